package teleop

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// Sleeper provides the settle delay after arming.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ClockSleeper sleeps on a clock.Clock and returns early if ctx is done.
type ClockSleeper struct {
	Clock clock.Clock
}

// NewClockSleeper returns a Sleeper backed by c, or by the wall clock if c is nil.
func NewClockSleeper(c clock.Clock) ClockSleeper {
	if c == nil {
		c = clock.New()
	}
	return ClockSleeper{Clock: c}
}

// Sleep waits for d. A zero or negative d does not wait but still reports a
// done ctx, so an interrupt aborts the step even without a settle delay.
func (s ClockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := s.Clock.Timer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
