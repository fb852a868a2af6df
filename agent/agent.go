// Package agent describes an animated agent: its frame geometry, its overlay
// layer count and the frame tables of every animation it can play.
//
// A Library is decoded once from an agent pack (agent.json or agent.yaml) and
// is treated as immutable afterwards.
package agent

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FrameImage is an (x, y) offset into the agent's sprite sheet. On the wire it
// is a two element array.
type FrameImage [2]int

// X returns the horizontal sheet offset.
func (f FrameImage) X() int { return f[0] }

// Y returns the vertical sheet offset.
func (f FrameImage) Y() int { return f[1] }

// UnmarshalJSON accepts exactly [x, y].
func (f *FrameImage) UnmarshalJSON(data []byte) error {
	var xy []int
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("frame image: want 2 elements, got %d", len(xy))
	}
	f[0], f[1] = xy[0], xy[1]
	return nil
}

// Branch is a weighted alternative next frame.
type Branch struct {
	FrameIndex int `json:"frameIndex" yaml:"frameIndex"`
	Weight     int `json:"weight" yaml:"weight"`
}

// Branching holds the branch table of a frame.
type Branching struct {
	Branches []Branch `json:"branches" yaml:"branches"`
}

// Frame is one timed step of an animation.
type Frame struct {
	Images     []FrameImage `json:"images,omitempty" yaml:"images,omitempty"`
	Duration   int          `json:"duration" yaml:"duration"`
	Branching  *Branching   `json:"branching,omitempty" yaml:"branching,omitempty"`
	ExitBranch *int         `json:"exitBranch,omitempty" yaml:"exitBranch,omitempty"`
	Sound      string       `json:"sound,omitempty" yaml:"sound,omitempty"`
}

// HasExitBranch reports whether the frame declares an exit branch.
func (f *Frame) HasExitBranch() bool {
	return f != nil && f.ExitBranch != nil
}

// Animation is an ordered list of frames. When UseExitBranching is set the
// last frame is a decision point rather than a final visual frame.
type Animation struct {
	UseExitBranching bool    `json:"useExitBranching,omitempty" yaml:"useExitBranching,omitempty"`
	Frames           []Frame `json:"frames" yaml:"frames"`
}

// LastIndex returns the index of the last frame, or -1 for an empty animation.
func (a *Animation) LastIndex() int {
	if a == nil {
		return -1
	}
	return len(a.Frames) - 1
}

// Library is the full description of an agent.
type Library struct {
	FrameSize    FrameImage            `json:"framesize" yaml:"framesize"`
	OverlayCount int                   `json:"overlayCount" yaml:"overlayCount"`
	Animations   map[string]*Animation `json:"animations" yaml:"animations"`
}

// Width returns the frame width in pixels.
func (l *Library) Width() int { return l.FrameSize[0] }

// Height returns the frame height in pixels.
func (l *Library) Height() int { return l.FrameSize[1] }

// Has reports whether an animation with the given name exists.
func (l *Library) Has(name string) bool {
	_, ok := l.Animation(name)
	return ok
}

// Animation returns the named animation.
func (l *Library) Animation(name string) (*Animation, bool) {
	if l == nil || l.Animations == nil {
		return nil, false
	}
	anim, ok := l.Animations[name]
	if !ok || anim == nil {
		return nil, false
	}
	return anim, true
}

// Names returns the animation names in alphabetical order.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.Animations))
	for name := range l.Animations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
