package animator

import (
	"math/rand/v2"

	"github.com/milk9111/officeagent/agent"
)

// Rand is the random source used for branch draws. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// NewSeededRand returns a deterministic source for reproducible playback.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NextFrame resolves the frame that follows index in anim. frame is the frame
// data currently held by the animator; nil means the animation has just
// started. The result is not clamped.
//
// An exit branch wins over the branch table while exiting. A branch draw is
// made over [0,100); when it exceeds the sum of all weights no branch is taken
// and playback moves on sequentially.
func NextFrame(anim *agent.Animation, frame *agent.Frame, index int, exiting bool, rng Rand) int {
	if anim == nil || frame == nil {
		return 0
	}
	if exiting && frame.HasExitBranch() {
		return *frame.ExitBranch
	}
	if frame.Branching != nil {
		if rng == nil {
			rng = globalRand{}
		}
		r := rng.Float64() * 100
		for _, b := range frame.Branching.Branches {
			if r <= float64(b.Weight) {
				return b.FrameIndex
			}
			r -= float64(b.Weight)
		}
	}
	return index + 1
}

func clampFrame(index, last int) int {
	if index > last {
		return last
	}
	if index < 0 {
		return 0
	}
	return index
}
