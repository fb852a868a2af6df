// Package director decides what an agent plays next.
//
// A Director sits on top of an animator: it shows the greeting, falls back to
// idle animations when something exits, lets requests wait for the running
// animation to leave through its exit branches, and every few seconds asks a
// Picker (a tengo script by default) for something new to play while the agent
// is idle.
package director

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/milk9111/officeagent/animator"
	"github.com/milk9111/officeagent/schedule"
)

const (
	ShowAnimation = "Show"

	DefaultMinInterval = 3 * time.Second
	DefaultMaxInterval = 7 * time.Second
	DefaultHold        = 5 * time.Second
)

// Engine is the part of animator.Animator the director drives.
type Engine interface {
	Animations() []string
	HasAnimation(name string) bool
	ShowAnimation(name string, onEnd animator.EndFunc) bool
	ExitAnimation()
	IsIdle() bool
	CurrentAnimation() string
	State() animator.State
}

// Option configures a Director.
type Option func(*Director)

// WithPicker sets the next-animation picker.
func WithPicker(p Picker) Option {
	return func(d *Director) {
		if p != nil {
			d.picker = p
		}
	}
}

// WithInterval sets the range of the idle cadence.
func WithInterval(min, max time.Duration) Option {
	return func(d *Director) {
		if min <= 0 {
			min = DefaultMinInterval
		}
		if max < min {
			max = min
		}
		d.min, d.max = min, max
	}
}

// WithHold sets how long a non-idle animation may wait at its exit decision
// frame before it is asked to exit.
func WithHold(hold time.Duration) Option {
	return func(d *Director) {
		if hold > 0 {
			d.hold = hold
		}
	}
}

// WithRand sets the random source for intervals and fallback picks.
func WithRand(r *rand.Rand) Option {
	return func(d *Director) {
		if r != nil {
			d.rng = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Director) {
		if l != nil {
			d.log = l
		}
	}
}

// Director sequences animations on one engine.
type Director struct {
	eng    Engine
	sched  schedule.Scheduler
	picker Picker
	rng    *rand.Rand
	log    *slog.Logger

	min  time.Duration
	max  time.Duration
	hold time.Duration

	queued    string
	cadence   schedule.Timer
	holdTimer schedule.Timer
	running   bool
	paused    bool
}

// New creates a stopped director.
func New(eng Engine, sched schedule.Scheduler, opts ...Option) *Director {
	d := &Director{
		eng:   eng,
		sched: sched,
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		min:   DefaultMinInterval,
		max:   DefaultMaxInterval,
		hold:  DefaultHold,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.picker == nil {
		p, err := NewScriptPicker(nil)
		if err != nil {
			d.log.Error("default script does not compile", "err", err)
			d.picker = PickerFunc(func([]string, string, string) (string, error) { return "", err })
		} else {
			d.picker = p
		}
	}
	return d
}

// Start shows the greeting animation, or an idle one when there is none, and
// starts the idle cadence.
func (d *Director) Start() {
	if d.running {
		return
	}
	d.running = true
	if d.eng.HasAnimation(ShowAnimation) {
		d.show(ShowAnimation)
	} else {
		d.idle()
	}
	d.armCadence()
}

// Stop cancels the director's timers. The engine keeps playing whatever it
// was playing.
func (d *Director) Stop() {
	d.running = false
	d.queued = ""
	stop(&d.cadence)
	stop(&d.holdTimer)
}

// Pause suspends the cadence and hold timers.
func (d *Director) Pause() {
	d.paused = true
	stop(&d.cadence)
	stop(&d.holdTimer)
}

// Resume restarts the timers suspended by Pause.
func (d *Director) Resume() {
	if !d.paused {
		return
	}
	d.paused = false
	if !d.running {
		return
	}
	if d.eng.State() == animator.StateExitDecision && !d.eng.IsIdle() {
		d.armHold()
	}
	d.armCadence()
}

// Queued returns the animation waiting for the current one to exit.
func (d *Director) Queued() string {
	return d.queued
}

// Play requests name. Idle or finished animations are interrupted at once;
// anything else is asked to exit and name plays once it has.
func (d *Director) Play(name string) bool {
	if !d.eng.HasAnimation(name) {
		return false
	}
	if d.interruptible() {
		d.queued = ""
		return d.show(name)
	}
	d.log.Debug("queue animation", "animation", name, "behind", d.eng.CurrentAnimation())
	d.queued = name
	d.eng.ExitAnimation()
	return true
}

// Next asks the picker for an animation and plays it.
func (d *Director) Next() bool {
	names := d.eng.Animations()
	name, err := d.picker.Pick(names, d.eng.CurrentAnimation(), d.eng.State().String())
	if err != nil {
		d.log.Warn("picker failed, choosing at random", "err", err)
		name = d.randomPick(names, func(n string) bool {
			return !isIdleName(n) && n != d.eng.CurrentAnimation()
		})
	}
	if name == "" {
		return false
	}
	return d.Play(name)
}

// Exit asks the running animation to leave without queueing anything.
func (d *Director) Exit() {
	d.queued = ""
	d.eng.ExitAnimation()
}

func (d *Director) interruptible() bool {
	switch d.eng.State() {
	case animator.StateIdle, animator.StateFinished:
		return true
	}
	return d.eng.IsIdle()
}

func (d *Director) show(name string) bool {
	stop(&d.holdTimer)
	if !d.eng.ShowAnimation(name, d.onEnd) {
		d.log.Warn("unable to show animation", "animation", name)
		return false
	}
	d.log.Debug("show animation", "animation", name)
	return true
}

func (d *Director) idle() bool {
	name := d.randomPick(d.eng.Animations(), isIdleName)
	if name == "" {
		return false
	}
	return d.show(name)
}

func (d *Director) onEnd(name string, t animator.Terminal) {
	d.log.Debug("animation ended", "animation", name, "state", t)
	switch t {
	case animator.Exited:
		if q := d.queued; q != "" {
			d.queued = ""
			d.show(q)
			return
		}
		d.idle()
	case animator.Waiting:
		if isIdleName(name) {
			return
		}
		if d.queued != "" {
			d.eng.ExitAnimation()
			return
		}
		d.armHold()
	}
}

func (d *Director) armHold() {
	stop(&d.holdTimer)
	if d.paused {
		return
	}
	d.holdTimer = d.sched.AfterFunc(d.hold, func() {
		d.holdTimer = nil
		d.eng.ExitAnimation()
	})
}

func (d *Director) armCadence() {
	stop(&d.cadence)
	if !d.running || d.paused {
		return
	}
	d.cadence = d.sched.AfterFunc(d.interval(), func() {
		d.cadence = nil
		if d.interruptible() {
			// A queued request whose Exited never came (an animation without
			// frames) is played here instead.
			if q := d.queued; q != "" {
				d.queued = ""
				d.show(q)
			} else {
				d.Next()
			}
		}
		d.armCadence()
	})
}

func (d *Director) interval() time.Duration {
	if d.max <= d.min {
		return d.min
	}
	return d.min + time.Duration(d.rng.Int64N(int64(d.max-d.min)+1))
}

func (d *Director) randomPick(names []string, keep func(string) bool) string {
	var candidates []string
	for _, n := range names {
		if keep(n) {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[d.rng.IntN(len(candidates))]
}

func isIdleName(name string) bool {
	return strings.Contains(name, "Idle")
}

func stop(t *schedule.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
