package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockFiresInDeadlineOrder(t *testing.T) {
	c := NewClock()
	var got []string
	c.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	c.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	c.AfterFunc(10*time.Millisecond, func() { got = append(got, "b") })

	c.Advance(9 * time.Millisecond)
	assert.Empty(t, got)
	assert.Equal(t, 3, c.Pending())

	c.Advance(1 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, got)

	c.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 10*time.Millisecond+time.Second, c.Now())
	assert.Zero(t, c.Pending())
}

func TestClockStop(t *testing.T) {
	c := NewClock()
	fired := false
	tm := c.AfterFunc(5*time.Millisecond, func() { fired = true })

	require.True(t, tm.Stop())
	assert.False(t, tm.Stop(), "second stop is a no-op")
	assert.Zero(t, c.Pending())

	c.Advance(10 * time.Millisecond)
	assert.False(t, fired)

	done := c.AfterFunc(0, func() {})
	c.Advance(0)
	assert.False(t, done.Stop(), "stopping a fired timer reports false")
}

func TestClockCallbackRearms(t *testing.T) {
	c := NewClock()
	var at []time.Duration
	var tick func()
	tick = func() {
		at = append(at, c.Now())
		if len(at) < 4 {
			c.AfterFunc(100*time.Millisecond, tick)
		}
	}
	c.AfterFunc(0, tick)

	c.Advance(250 * time.Millisecond)
	assert.Equal(t, []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}, at)
	assert.Equal(t, 1, c.Pending())

	c.Advance(50 * time.Millisecond)
	assert.Len(t, at, 4)
	assert.Zero(t, c.Pending())
}

func TestClockDefersZeroDelayChains(t *testing.T) {
	c := NewClock()
	count := 0
	var tick func()
	tick = func() {
		count++
		c.AfterFunc(0, tick)
	}
	c.AfterFunc(0, tick)

	c.Advance(time.Millisecond)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, c.Pending())

	c.Advance(time.Millisecond)
	assert.Equal(t, 2, count)
}

func TestClockStopFromCallback(t *testing.T) {
	c := NewClock()
	fired := false
	later := c.AfterFunc(20*time.Millisecond, func() { fired = true })
	c.AfterFunc(10*time.Millisecond, func() { later.Stop() })

	c.Advance(time.Second)
	assert.False(t, fired)
}
