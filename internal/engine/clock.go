package engine

import (
	"log/slog"
	"time"
)

// Clock drives day advancement in real time for hosts that want the
// campaign to tick on its own instead of calling AdvanceDay themselves.
// The core stays synchronous: the clock just calls OnDay from its loop.
type Clock struct {
	Speed    float64       // Multiplier: 1.0 = one day per interval, 0 = paused.
	Interval time.Duration // Base day interval.
	Running  bool

	OnDay func() // Invoked once per elapsed day.
}

// NewClock creates a clock with a one-second day interval.
func NewClock() *Clock {
	return &Clock{
		Speed:    1.0,
		Interval: time.Second,
	}
}

// Run starts the loop. Blocks until Stop is called.
func (c *Clock) Run() {
	c.Running = true
	slog.Info("campaign clock started", "interval", c.Interval, "speed", c.Speed)

	for c.Running {
		if c.Speed <= 0 {
			// Paused. Sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		if c.OnDay != nil {
			c.OnDay()
		}

		elapsed := time.Since(start)
		target := time.Duration(float64(c.Interval) / c.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("campaign clock stopped")
}

// Stop halts the loop after the current day completes.
func (c *Clock) Stop() {
	c.Running = false
}
