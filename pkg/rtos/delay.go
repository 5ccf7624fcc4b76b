package rtos

import (
	"context"
	"time"
)

// Delay blocks for d or until ctx is done.
func Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DelayUntil blocks until period after *last and then advances *last by
// period. Wake times stay on a fixed grid no matter how long the caller worked
// between calls; if the deadline has already passed it returns at once.
func DelayUntil(ctx context.Context, last *time.Time, period time.Duration) error {
	*last = last.Add(period)
	return Delay(ctx, time.Until(*last))
}
