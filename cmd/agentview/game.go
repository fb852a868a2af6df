package main

import (
	"fmt"
	"image/color"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/officeagent/assets"
	"github.com/milk9111/officeagent/config"
	"github.com/milk9111/officeagent/director"
	"github.com/milk9111/officeagent/schedule"
	"github.com/milk9111/officeagent/sound"
	"github.com/milk9111/officeagent/watch"
	"golang.design/x/clipboard"
)

const (
	screenWidth  = 640
	screenHeight = 480
)

const volumeStep = 0.1

var background = color.NRGBA{R: 0x00, G: 0x80, B: 0x80, A: 0xff}

type Game struct {
	cfg   config.Viewer
	fsys  fs.FS
	log   *slog.Logger
	clock *schedule.Clock
	audio *audio.Context
	rng   *rand.Rand

	picker   director.Picker
	sess     *session
	controls *controls
	watcher  *watch.Watcher

	paused    bool
	clipboard bool
	status    string
}

func NewGame(cfg config.Viewer, log *slog.Logger) (*Game, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	g := &Game{
		cfg:   cfg,
		fsys:  assets.Open(cfg.AgentsDir),
		log:   log,
		clock: schedule.NewClock(),
		audio: audio.NewContext(sound.SampleRate),
		rng:   rand.New(rand.NewPCG(seed, seed>>1|1)),
	}

	if cfg.Script != "" {
		if err := g.loadScript(); err != nil {
			return nil, err
		}
	}

	sess, err := newSession(g.deps())
	if err != nil {
		return nil, err
	}
	g.sess = sess
	g.controls = newControls(g)

	if err := clipboard.Init(); err != nil {
		log.Warn("clipboard unavailable", "err", err)
	} else {
		g.clipboard = true
	}

	if cfg.Watch {
		g.startWatcher()
	}

	g.sess.director.Start()
	return g, nil
}

func (g *Game) deps() sessionDeps {
	return sessionDeps{
		fsys:   g.fsys,
		cfg:    g.cfg,
		clock:  g.clock,
		audio:  g.audio,
		picker: g.picker,
		rng:    g.rng,
		log:    g.log,
	}
}

func (g *Game) loadScript() error {
	src, err := os.ReadFile(g.cfg.Script)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	p, err := director.NewScriptPicker(src)
	if err != nil {
		return err
	}
	g.picker = p
	return nil
}

func (g *Game) startWatcher() {
	var dirs []string
	if dir := filepath.Join(g.cfg.AgentsDir, g.cfg.Agent); isDir(dir) {
		dirs = append(dirs, dir)
	}
	if g.cfg.Script != "" {
		dirs = append(dirs, filepath.Dir(g.cfg.Script))
	}
	if len(dirs) == 0 {
		g.log.Debug("nothing to watch")
		return
	}

	// Only the configured script reloads; other scripts in its directory don't.
	script := g.cfg.Script
	if script != "" {
		script = filepath.Clean(script)
	}
	w, err := watch.New(dirs, watch.WithFilter(func(p string) bool {
		if watch.IsScript(p) {
			return script != "" && filepath.Clean(p) == script
		}
		return watch.IsDefinition(p)
	}))
	if err != nil {
		g.log.Warn("unable to watch agent files", "dirs", dirs, "err", err)
		return
	}
	g.watcher = w
	g.log.Info("watching for changes", "dirs", dirs)
}

func (g *Game) Update() error {
	g.drainWatcher()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.togglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		g.exit()
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		g.next()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copyName()
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.changeVolume(-volumeStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.changeVolume(volumeStep)
	}

	g.clock.Advance(time.Second / time.Duration(ebiten.TPS()))
	g.controls.ui.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	w, h := g.sess.overlay.Size()
	scale := g.cfg.Scale
	area := float64(screenWidth - panelWidth)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate((area-float64(w)*scale)/2, (screenHeight-float64(h)*scale)/2)
	g.sess.overlay.DrawTo(screen, op)

	g.controls.ui.Draw(screen)
	ebitenutil.DebugPrint(screen, g.statusLine())
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return screenWidth, screenHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// Close releases the session and the watcher.
func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	if g.sess != nil {
		g.sess.close()
	}
}

func (g *Game) statusLine() string {
	line := fmt.Sprintf("%s  frame %d  %s", g.sess.engine.CurrentAnimation(), g.sess.engine.FrameIndex(), g.sess.engine.State())
	if q := g.sess.director.Queued(); q != "" {
		line += "  next: " + q
	}
	if g.paused {
		line += "  [paused]"
	}
	line += fmt.Sprintf("\n%d sounds  volume %.0f%%", len(g.sess.sounds.IDs()), g.sess.sounds.Volume()*100)
	if g.status != "" {
		line += "\n" + g.status
	}
	return line
}

func (g *Game) play(name string) {
	if g.paused {
		g.togglePause()
	}
	if !g.sess.director.Play(name) {
		g.status = "unknown animation " + name
	}
}

func (g *Game) exit() {
	g.sess.director.Exit()
}

func (g *Game) next() {
	if g.paused {
		return
	}
	if !g.sess.director.Next() {
		g.status = "nothing to play"
	}
}

func (g *Game) togglePause() {
	g.paused = !g.paused
	if g.paused {
		g.sess.engine.Pause()
		g.sess.director.Pause()
	} else {
		g.sess.engine.Resume()
		g.sess.director.Resume()
	}
	g.controls.setPaused(g.paused)
}

// changeVolume applies to the running session and to sessions built by
// later reloads.
func (g *Game) changeVolume(delta float64) {
	g.sess.sounds.SetVolume(g.sess.sounds.Volume() + delta)
	g.cfg.Volume = g.sess.sounds.Volume()
}

func (g *Game) copyName() {
	name := g.sess.engine.CurrentAnimation()
	if !g.clipboard || name == "" {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(name))
	g.status = "copied " + name
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(name)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.log.Warn("watch error", "err", err)
		default:
			return
		}
	}
}

func (g *Game) reload(name string) {
	g.log.Info("reloading", "file", name)

	if watch.IsScript(name) {
		if err := g.loadScript(); err != nil {
			g.log.Error("script reload failed", "err", err)
			g.status = "script error, keeping previous script"
			return
		}
	}

	sess, err := replaceSession(g.sess, func() (*session, error) {
		return newSession(g.deps())
	})
	if err != nil {
		g.log.Error("agent reload failed", "agent", g.cfg.Agent, "err", err)
		g.status = "reload failed: " + err.Error()
		return
	}

	g.sess = sess
	g.paused = false
	g.controls = newControls(g)
	g.status = "reloaded " + filepath.Base(name)
	g.sess.director.Start()
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
