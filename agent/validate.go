package agent

import (
	"errors"
	"fmt"
)

// Problem is an authoring issue found in a library.
type Problem struct {
	Animation string
	Frame     int
	Msg       string
}

func (p Problem) Error() string {
	if p.Animation == "" {
		return p.Msg
	}
	if p.Frame < 0 {
		return fmt.Sprintf("%s: %s", p.Animation, p.Msg)
	}
	return fmt.Sprintf("%s[%d]: %s", p.Animation, p.Frame, p.Msg)
}

// Validate reports authoring problems. Playback does not depend on it: the
// animator accepts whatever was decoded.
func (l *Library) Validate() error {
	if l == nil {
		return errors.New("agent: nil library")
	}
	var errs []error
	if l.OverlayCount < 1 {
		errs = append(errs, Problem{Msg: fmt.Sprintf("overlayCount %d < 1", l.OverlayCount)})
	}
	if l.FrameSize[0] <= 0 || l.FrameSize[1] <= 0 {
		errs = append(errs, Problem{Msg: fmt.Sprintf("framesize %dx%d is empty", l.FrameSize[0], l.FrameSize[1])})
	}
	for _, name := range l.Names() {
		anim := l.Animations[name]
		if anim == nil || len(anim.Frames) == 0 {
			errs = append(errs, Problem{Animation: name, Frame: -1, Msg: "no frames"})
			continue
		}
		n := len(anim.Frames)
		for i, frame := range anim.Frames {
			if frame.Duration < 0 {
				errs = append(errs, Problem{Animation: name, Frame: i, Msg: fmt.Sprintf("negative duration %d", frame.Duration)})
			}
			if len(frame.Images) > l.OverlayCount {
				errs = append(errs, Problem{Animation: name, Frame: i, Msg: fmt.Sprintf("%d images for %d overlays", len(frame.Images), l.OverlayCount)})
			}
			if frame.ExitBranch != nil && (*frame.ExitBranch < 0 || *frame.ExitBranch >= n) {
				errs = append(errs, Problem{Animation: name, Frame: i, Msg: fmt.Sprintf("exitBranch %d out of range", *frame.ExitBranch)})
			}
			if frame.Branching == nil {
				continue
			}
			for _, b := range frame.Branching.Branches {
				if b.FrameIndex < 0 || b.FrameIndex >= n {
					errs = append(errs, Problem{Animation: name, Frame: i, Msg: fmt.Sprintf("branch frameIndex %d out of range", b.FrameIndex)})
				}
				if b.Weight < 0 {
					errs = append(errs, Problem{Animation: name, Frame: i, Msg: fmt.Sprintf("negative branch weight %d", b.Weight)})
				}
			}
		}
	}
	return errors.Join(errs...)
}
