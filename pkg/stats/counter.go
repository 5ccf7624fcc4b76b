// Package stats provides the event rate counters shown by the demo overlay.
package stats

import (
	"sync"
	"time"
)

// DefaultWindow is the measurement window used when none is given.
const DefaultWindow = time.Second

// Counter tracks events over a fixed time window and exposes the rate of the
// last completed window in events per second.
//
// Windows are aligned to a grid starting at the last Reset, so a counter that is
// updated late still reports the average over every window that elapsed.
type Counter struct {
	mu     sync.Mutex
	window time.Duration
	alpha  float64
	now    func() time.Time

	start time.Time
	count uint64
	rate  float64
}

// Option configures a Counter.
type Option func(*Counter)

// WithSmoothing blends each new measurement with the previous rate:
// rate = alpha*previous + (1-alpha)*measured. Values outside [0, 1) disable
// smoothing.
func WithSmoothing(alpha float64) Option {
	return func(c *Counter) {
		if alpha < 0 || alpha >= 1 {
			alpha = 0
		}
		c.alpha = alpha
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Counter) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a zeroed counter whose first window starts now.
func New(window time.Duration, opts ...Option) *Counter {
	if window <= 0 {
		window = DefaultWindow
	}
	c := &Counter{window: window, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.start = c.now()
	return c
}

// Window returns the measurement window.
func (c *Counter) Window() time.Duration { return c.window }

// Update adds n events to the current window and returns the current rate. When
// one or more whole windows have elapsed the rate is recomputed from the events
// accumulated, n included, and an empty window is started.
func (c *Counter) Update(n uint64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count += n
	if elapsed := c.now().Sub(c.start); elapsed >= c.window {
		k := elapsed / c.window
		measured := float64(c.count) / (float64(k) * c.window.Seconds())
		if c.alpha > 0 {
			c.rate = c.alpha*c.rate + (1-c.alpha)*measured
		} else {
			c.rate = measured
		}
		c.start = c.start.Add(k * c.window)
		c.count = 0
	}
	return c.rate
}

// Reset zeroes the rate and the accumulated events and restarts the window.
func (c *Counter) Reset() {
	c.mu.Lock()
	c.rate = 0
	c.count = 0
	c.start = c.now()
	c.mu.Unlock()
}

// Current returns the rate of the last completed window.
func (c *Counter) Current() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// Pending returns the events counted in the window in progress.
func (c *Counter) Pending() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
