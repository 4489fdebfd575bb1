package provisioning

import (
	"context"
	"time"
)

// DefaultBackoff is the inter-attempt delay schedule. It is a short fixed
// increasing sequence matched to observed identity propagation latency, not an
// exponential curve: the caller is waiting on a form, so delays stay low.
var DefaultBackoff = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	3 * time.Second,
	5 * time.Second,
}

// Sleeper abstracts cancellable delays so tests can observe backoff behavior
// without real time passing.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ClockSleeper sleeps on the wall clock, aborting when the context is done.
type ClockSleeper struct{}

func (ClockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// backoffFor returns the delay before the given retry. Attempts past the end
// of the schedule reuse its last entry.
func backoffFor(schedule []time.Duration, retry int) time.Duration {
	if len(schedule) == 0 {
		return 0
	}
	if retry < 1 {
		retry = 1
	}
	if retry > len(schedule) {
		retry = len(schedule)
	}
	return schedule[retry-1]
}
