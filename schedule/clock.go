// Package schedule provides a cooperative, single-threaded timer queue.
//
// Nothing runs on its own goroutine: callbacks fire from Advance, on whatever
// goroutine drives the clock (the ebiten update loop in the viewer, the test
// goroutine in tests). A callback may arm new timers.
package schedule

import (
	"container/heap"
	"time"
)

// Timer is a pending callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from running.
	Stop() bool
}

// Scheduler arms one-shot callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type timer struct {
	at      time.Duration
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
	index   int
}

func (t *timer) Stop() bool {
	if t == nil || t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (t *timer) pending() bool {
	return !t.stopped && !t.fired
}

// Clock is a manually advanced Scheduler.
type Clock struct {
	now       time.Duration
	seq       uint64
	queue     timerQueue
	advancing bool
	deferred  []*timer
}

// NewClock creates a clock at time zero.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the elapsed clock time.
func (c *Clock) Now() time.Duration {
	return c.now
}

// AfterFunc arms fn to run once d has elapsed. Non-positive delays armed from
// inside a callback run on the next Advance, so a chain of zero-length timers
// cannot stall the caller.
func (c *Clock) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	c.seq++
	t := &timer{at: c.now + d, seq: c.seq, fn: fn}
	if c.advancing && d == 0 {
		c.deferred = append(c.deferred, t)
		return t
	}
	heap.Push(&c.queue, t)
	return t
}

// Advance moves the clock forward by dt, firing every due timer in deadline
// order.
func (c *Clock) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	target := c.now + dt

	c.advancing = true
	for c.queue.Len() > 0 {
		next := c.queue[0]
		if next.at > target {
			break
		}
		heap.Pop(&c.queue)
		if !next.pending() {
			continue
		}
		if next.at > c.now {
			c.now = next.at
		}
		next.fired = true
		if next.fn != nil {
			next.fn()
		}
	}
	c.advancing = false
	c.now = target

	for _, t := range c.deferred {
		if t.pending() {
			heap.Push(&c.queue, t)
		}
	}
	c.deferred = nil
}

// Pending returns the number of armed, not yet fired timers.
func (c *Clock) Pending() int {
	n := 0
	for _, t := range c.queue {
		if t.pending() {
			n++
		}
	}
	for _, t := range c.deferred {
		if t.pending() {
			n++
		}
	}
	return n
}

type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at == q[j].at {
		return q[i].seq < q[j].seq
	}
	return q[i].at < q[j].at
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
