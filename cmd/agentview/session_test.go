package main

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/milk9111/officeagent/agent"
	"github.com/milk9111/officeagent/animator"
	"github.com/milk9111/officeagent/assets"
	"github.com/milk9111/officeagent/config"
	"github.com/milk9111/officeagent/director"
	"github.com/milk9111/officeagent/internal/logging"
	"github.com/milk9111/officeagent/render"
	"github.com/milk9111/officeagent/schedule"
	"github.com/milk9111/officeagent/sound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSession builds a session without a sprite sheet or audio device.
func testSession(t *testing.T, clock *schedule.Clock) *session {
	t.Helper()
	lib := &agent.Library{
		FrameSize:    agent.FrameImage{10, 10},
		OverlayCount: 1,
		Animations: map[string]*agent.Animation{
			"Wave": {Frames: []agent.Frame{
				{Images: []agent.FrameImage{{0, 0}}, Duration: 100},
				{Images: []agent.FrameImage{{10, 0}}, Duration: 100},
			}},
		},
	}
	overlay := render.NewOverlay(nil, lib, nil)
	eng, err := animator.New(lib, overlay, clock)
	require.NoError(t, err)
	return &session{
		agent:    &assets.Agent{Name: "Test", Library: lib},
		overlay:  overlay,
		sounds:   sound.NewBank(nil),
		engine:   eng,
		director: director.New(eng, clock),
	}
}

func TestReloadFailureKeepsRunningSession(t *testing.T) {
	clock := schedule.NewClock()
	cur := testSession(t, clock)
	require.True(t, cur.engine.ShowAnimation("Wave", nil))

	broken := fstest.MapFS{
		"Blinky/agent.json": {Data: []byte(`{"animations": 5}`)},
		"Blinky/map.png":    {Data: assetsPNG(t)},
	}
	deps := sessionDeps{
		fsys:  broken,
		cfg:   config.Default(),
		clock: clock,
		rng:   animator.NewSeededRand(1),
		log:   logging.NewNop(),
	}

	got, err := replaceSession(cur, func() (*session, error) { return newSession(deps) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Blinky/agent.json")
	assert.Same(t, cur, got)

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, cur.engine.FrameIndex(), "old engine keeps ticking")

	deps.fsys = fstest.MapFS{}
	got, err = replaceSession(cur, func() (*session, error) { return newSession(deps) })
	assert.ErrorIs(t, err, assets.ErrAgentNotFound)
	assert.Same(t, cur, got)
	assert.True(t, cur.engine.ShowAnimation("Wave", nil))
}

func TestReloadClosesPreviousSession(t *testing.T) {
	clock := schedule.NewClock()
	cur := testSession(t, clock)
	next := testSession(t, clock)
	require.True(t, cur.engine.ShowAnimation("Wave", nil))

	got, err := replaceSession(cur, func() (*session, error) { return next, nil })
	require.NoError(t, err)
	assert.Same(t, next, got)

	assert.False(t, cur.engine.ShowAnimation("Wave", nil), "old engine is closed")
	assert.Zero(t, clock.Pending())
	assert.True(t, next.engine.ShowAnimation("Wave", nil))
}

func TestReloadWithoutCurrentSession(t *testing.T) {
	next := testSession(t, schedule.NewClock())
	got, err := replaceSession(nil, func() (*session, error) { return next, nil })
	require.NoError(t, err)
	assert.Same(t, next, got)

	got, err = replaceSession(nil, func() (*session, error) { return nil, errors.New("boom") })
	assert.EqualError(t, err, "boom")
	assert.Nil(t, got)
}
