package provisioning

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPropagationDelay is the settling time between identity creation and
// the first registrar call. Empirical, with no derived upper bound, which is
// exactly why it is configurable and why the retry loop exists above it: the
// delay is best effort, the retries restore correctness.
const DefaultPropagationDelay = 2 * time.Second

// Waiter bridges the eventual-consistency gap between the identity subsystem
// and the relational store. The two are not transactionally joined; the waiter
// only makes the first registrar attempt likely to succeed.
type Waiter struct {
	delay   time.Duration
	sleeper Sleeper
	logger  *slog.Logger
}

func NewWaiter(delay time.Duration, sleeper Sleeper, logger *slog.Logger) *Waiter {
	if delay < 0 {
		delay = DefaultPropagationDelay
	}
	if sleeper == nil {
		sleeper = ClockSleeper{}
	}
	return &Waiter{delay: delay, sleeper: sleeper, logger: logger}
}

// Wait blocks for the settling delay or until the context is cancelled.
func (w *Waiter) Wait(ctx context.Context) error {
	if w.delay == 0 {
		return ctx.Err()
	}
	w.logger.DebugContext(ctx, "waiting for identity propagation",
		"delay_ms", w.delay.Milliseconds(),
	)
	return w.sleeper.Sleep(ctx, w.delay)
}
