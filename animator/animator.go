// Package animator plays agent animations frame by frame.
//
// An Animator owns a single frame cursor. Each tick resolves the next frame
// (exit branch, weighted branch or sequential), hands its sprite offsets and
// sound to a RenderSink and re-arms itself after the frame's duration. When
// the cursor lands on the last frame the caller is told once, either that the
// animation has exited or that it is waiting at its exit decision frame.
//
// The animator is not safe for concurrent use. All calls, including the
// scheduled ticks, are expected on the goroutine that drives the Scheduler.
package animator

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/milk9111/officeagent/agent"
	"github.com/milk9111/officeagent/schedule"
)

// Terminal is passed to an EndFunc when an animation reaches its last frame.
type Terminal int

const (
	// Exited means the animation has concluded.
	Exited Terminal = 0
	// Waiting means an exit-branching animation is parked at its decision
	// frame until ExitAnimation is called.
	Waiting Terminal = 1
)

func (t Terminal) String() string {
	switch t {
	case Exited:
		return "exited"
	case Waiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// State is the playback state of an Animator.
type State int

const (
	// StateIdle is the state before the first ShowAnimation.
	StateIdle State = iota
	// StatePlaying means frames are still advancing toward the last one.
	StatePlaying
	// StateExitDecision means an exit-branching animation is parked at its
	// last frame and has reported Waiting.
	StateExitDecision
	// StateFinished means the animation has exited, or had no frames to play.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateExitDecision:
		return "exit-decision"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// EndFunc observes terminal transitions.
type EndFunc func(name string, t Terminal)

// RenderSink draws frames and plays sounds. Overlay layer i receives
// images[i] or is hidden when there are fewer images than layers.
type RenderSink interface {
	Draw(images []agent.FrameImage)
	PlaySound(id string)
}

// Errors returned by New for missing collaborators.
var (
	ErrNilLibrary   = errors.New("animator: nil library")
	ErrNilSink      = errors.New("animator: nil render sink")
	ErrNilScheduler = errors.New("animator: nil scheduler")
)

// Option configures an Animator.
type Option func(*Animator)

// WithRand sets the branch draw source.
func WithRand(r Rand) Option {
	return func(a *Animator) {
		if r != nil {
			a.rng = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Animator) {
		if l != nil {
			a.log = l
		}
	}
}

// Animator is the playback engine for one agent.
type Animator struct {
	lib   *agent.Library
	sink  RenderSink
	sched schedule.Scheduler
	rng   Rand
	log   *slog.Logger

	anim    *agent.Animation
	name    string
	index   int
	frame   *agent.Frame
	exiting bool
	started bool
	stalled bool
	closed  bool
	state   State
	onEnd   EndFunc
	pending schedule.Timer
}

// New creates an Animator. Nothing is drawn until the first ShowAnimation.
func New(lib *agent.Library, sink RenderSink, sched schedule.Scheduler, opts ...Option) (*Animator, error) {
	if lib == nil {
		return nil, ErrNilLibrary
	}
	if sink == nil {
		return nil, ErrNilSink
	}
	if sched == nil {
		return nil, ErrNilScheduler
	}
	a := &Animator{
		lib:   lib,
		sink:  sink,
		sched: sched,
		rng:   globalRand{},
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// HasAnimation reports whether the library defines name.
func (a *Animator) HasAnimation(name string) bool {
	return a.lib.Has(name)
}

// Animations returns the library's animation names, sorted.
func (a *Animator) Animations() []string {
	return a.lib.Names()
}

// CurrentAnimation returns the name of the active animation.
func (a *Animator) CurrentAnimation() string {
	return a.name
}

// FrameIndex returns the frame cursor.
func (a *Animator) FrameIndex() int {
	return a.index
}

// State returns the playback state.
func (a *Animator) State() State {
	return a.state
}

// IsIdle reports whether the active animation is an idle animation. Idle
// animations are marked by name only.
func (a *Animator) IsIdle() bool {
	return strings.Contains(a.name, "Idle")
}

// ShowAnimation switches playback to name, starting from its first frame.
// onEnd replaces any previous callback. The first successful call starts the
// tick loop; later calls redirect it at its next tick. Unknown names return
// false and leave the current animation untouched.
func (a *Animator) ShowAnimation(name string, onEnd EndFunc) bool {
	if a.closed {
		return false
	}
	a.exiting = false

	anim, ok := a.lib.Animation(name)
	if !ok {
		return false
	}

	a.anim = anim
	a.name = name
	a.index = 0
	a.frame = nil
	a.onEnd = onEnd
	a.state = StatePlaying

	// An empty animation leaves no tick armed, so the next one restarts the loop.
	if !a.started || a.stalled {
		a.started = true
		a.step()
	}
	return true
}

// ExitAnimation asks the active animation to leave through its exit branches.
// It takes effect on the next frame resolution.
func (a *Animator) ExitAnimation() {
	a.exiting = true
}

// Exiting reports whether an exit has been requested for the active animation.
func (a *Animator) Exiting() bool {
	return a.exiting
}

// Pause cancels the pending tick. Playback state is kept.
func (a *Animator) Pause() {
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
}

// Resume draws the held frame again and re-arms the loop from its duration.
// If no frame is held yet, a regular tick runs instead.
func (a *Animator) Resume() {
	if a.closed || !a.started {
		return
	}
	a.Pause()
	if a.frame == nil {
		a.step()
		return
	}
	a.render(a.frame)
	a.arm(a.frame.Duration)
}

// Close cancels the pending tick and releases the sink and callback. A closed
// animator ignores every further request.
func (a *Animator) Close() {
	a.Pause()
	a.closed = true
	a.onEnd = nil
	a.sink = nil
}

func (a *Animator) step() {
	a.pending = nil
	if a.closed || a.anim == nil {
		return
	}
	last := a.anim.LastIndex()
	a.stalled = last < 0
	if a.stalled {
		a.state = StateFinished
		return
	}

	next := clampFrame(NextFrame(a.anim, a.frame, a.index, a.exiting, a.rng), last)
	changed := a.frame == nil || a.index != next
	a.index = next
	atLast := a.index >= last

	// At the decision frame of an exit-branching animation the previous frame's
	// data stays in place so its branch table keeps driving the loop.
	if a.frame == nil || !(atLast && a.anim.UseExitBranching) {
		a.frame = &a.anim.Frames[a.index]
	}

	a.render(a.frame)
	a.arm(a.frame.Duration)

	switch {
	case changed && atLast:
		a.finish()
	case !atLast:
		a.state = StatePlaying
	}
}

func (a *Animator) finish() {
	t := Exited
	if a.anim.UseExitBranching && !a.exiting {
		t = Waiting
		a.state = StateExitDecision
	} else {
		a.state = StateFinished
	}

	a.log.Debug("animation end", "animation", a.name, "state", t)
	if a.onEnd != nil {
		a.onEnd(a.name, t)
	}
}

func (a *Animator) render(frame *agent.Frame) {
	if a.sink == nil || frame == nil {
		return
	}
	a.sink.Draw(frame.Images)
	if frame.Sound != "" {
		a.log.Debug("sound", "animation", a.name, "id", frame.Sound)
		a.sink.PlaySound(frame.Sound)
	}
}

func (a *Animator) arm(ms int) {
	if ms < 0 {
		ms = 0
	}
	a.pending = a.sched.AfterFunc(time.Duration(ms)*time.Millisecond, a.step)
}
