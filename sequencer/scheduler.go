package sequencer

import (
	"math"
	"sync"
	"time"
)

// Scheduler arms a single deferred callback. Arm replaces whatever was
// pending; Cancel drops it.
type Scheduler interface {
	Arm(delay time.Duration, fn func()) error
	Cancel()
}

// MinDelay is the shortest delay Clock will wait for.
const MinDelay = time.Millisecond

// TempoDelay converts a tempo in milliseconds to a delay, saturating at the
// Duration range. NaN gives 0.
func TempoDelay(ms float64) time.Duration {
	d := ms * float64(time.Millisecond)
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt64:
		return math.MaxInt64
	case d <= math.MinInt64:
		return math.MinInt64
	}
	return time.Duration(d)
}

// Clock is a Scheduler backed by time.AfterFunc. Expired callbacks are not
// run by the timer goroutine: they are handed over on Fired so that the
// loop owning the engine runs them. A callback superseded by a later Arm or
// Cancel is discarded even if its timer already went off.
type Clock struct {
	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	closed  bool
	fired   chan func()
	done    chan struct{}
}

func NewClock() *Clock {
	return &Clock{
		fired: make(chan func(), 1),
		done:  make(chan struct{}),
	}
}

func (c *Clock) Arm(delay time.Duration, fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	if delay < MinDelay {
		delay = MinDelay
	}
	c.gen++
	gen := c.gen
	c.pending = true
	c.timer = time.AfterFunc(delay, func() {
		select {
		case c.fired <- func() { c.run(gen, fn) }:
		case <-c.done:
		}
	})
	return nil
}

func (c *Clock) run(gen uint64, fn func()) {
	c.mu.Lock()
	current := gen == c.gen && c.pending && !c.closed
	if current {
		c.pending = false
	}
	c.mu.Unlock()
	if current {
		fn()
	}
}

func (c *Clock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
}

func (c *Clock) cancel() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.pending = false
}

// Pending reports whether a callback is armed and has not run yet.
func (c *Clock) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *Clock) Fired() <-chan func() {
	return c.fired
}

// Close releases the timer. Arm fails with ErrClosed afterwards.
func (c *Clock) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cancel()
	c.closed = true
	close(c.done)
}
