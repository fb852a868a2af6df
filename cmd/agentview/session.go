package main

import (
	"io/fs"
	"log/slog"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/officeagent/animator"
	"github.com/milk9111/officeagent/assets"
	"github.com/milk9111/officeagent/config"
	"github.com/milk9111/officeagent/director"
	"github.com/milk9111/officeagent/render"
	"github.com/milk9111/officeagent/schedule"
	"github.com/milk9111/officeagent/sound"
)

// session is one loaded agent and the engine playing it. A reload builds a
// new session and closes the old one.
type session struct {
	agent    *assets.Agent
	overlay  *render.Overlay
	sounds   *sound.Bank
	engine   *animator.Animator
	director *director.Director
}

type sessionDeps struct {
	fsys   fs.FS
	cfg    config.Viewer
	clock  *schedule.Clock
	audio  *audio.Context
	picker director.Picker
	rng    *rand.Rand
	log    *slog.Logger
}

func newSession(d sessionDeps) (*session, error) {
	a, err := assets.Load(d.fsys, d.cfg.Agent, d.log)
	if err != nil {
		return nil, err
	}

	bank := sound.NewBank(d.audio,
		sound.WithFS(d.fsys),
		sound.WithVolume(d.cfg.Volume),
		sound.WithLogger(d.log),
	)
	if n := bank.LoadAll(a.Sounds); n < len(a.Sounds) {
		d.log.Warn("some sounds failed to load", "agent", a.Name, "loaded", n, "total", len(a.Sounds))
	}

	overlay := render.NewOverlay(ebiten.NewImageFromImage(a.Sheet), a.Library, bank)

	eng, err := animator.New(a.Library, overlay, d.clock,
		animator.WithRand(d.rng),
		animator.WithLogger(d.log.With("agent", a.Name)),
	)
	if err != nil {
		_ = bank.Close()
		return nil, err
	}

	opts := []director.Option{
		director.WithInterval(d.cfg.IdleMin(), d.cfg.IdleMax()),
		director.WithHold(d.cfg.Hold()),
		director.WithRand(d.rng),
		director.WithLogger(d.log.With("agent", a.Name)),
	}
	if d.picker != nil {
		opts = append(opts, director.WithPicker(d.picker))
	}

	return &session{
		agent:    a,
		overlay:  overlay,
		sounds:   bank,
		engine:   eng,
		director: director.New(eng, d.clock, opts...),
	}, nil
}

func (s *session) close() {
	s.director.Stop()
	s.engine.Close()
	_ = s.sounds.Close()
}

// replaceSession builds the next session and closes cur only once the new one
// is ready. On error cur is returned and keeps running.
func replaceSession(cur *session, build func() (*session, error)) (*session, error) {
	next, err := build()
	if err != nil {
		return cur, err
	}
	if cur != nil {
		cur.close()
	}
	return next, nil
}
