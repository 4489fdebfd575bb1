package provisioning

import (
	"context"
	"log/slog"
	"time"

	dErrors "member-gateway/pkg/domain-errors"
)

// ProgressFunc reports retry progress to the caller. While retrying, the
// caller-visible status stays a positive in-progress signal (attempt n of
// max), never an error display: most retries succeed.
type ProgressFunc func(attempt, max int)

// Orchestrator runs an operation under the bounded retry policy. Only errors
// the taxonomy classifies retryable advance the attempt counter; everything
// else exits immediately. Exhausting attempts reports the last observed error,
// not a synthetic timeout.
type Orchestrator struct {
	maxAttempts int
	schedule    []time.Duration
	sleeper     Sleeper
	logger      *slog.Logger
	now         func() time.Time
}

func NewOrchestrator(maxAttempts int, schedule []time.Duration, sleeper Sleeper, logger *slog.Logger) *Orchestrator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if len(schedule) == 0 {
		schedule = DefaultBackoff
	}
	if sleeper == nil {
		sleeper = ClockSleeper{}
	}
	return &Orchestrator{
		maxAttempts: maxAttempts,
		schedule:    schedule,
		sleeper:     sleeper,
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes op until it succeeds, fails terminally, or attempts run out.
// The final Attempt value is returned for reporting either way. Attempts are
// strictly sequential; two retries of the same submission never interleave,
// which the registrar's idempotency contract depends on.
func (o *Orchestrator) Run(ctx context.Context, name string, onProgress ProgressFunc, op func(ctx context.Context, attempt Attempt) error) (Attempt, error) {
	attempt := StartAttempt(o.maxAttempts, o.now())

	for {
		if err := ctx.Err(); err != nil {
			return attempt, err
		}
		if onProgress != nil {
			onProgress(attempt.Number, attempt.Max)
		}

		err := op(ctx, attempt)
		if err == nil {
			return attempt, nil
		}
		if ctx.Err() != nil {
			return attempt, ctx.Err()
		}
		if !dErrors.Retryable(err) {
			return attempt, err
		}

		next := attempt.Next(err)
		if next.Exhausted() {
			o.logger.WarnContext(ctx, "retries exhausted",
				"operation", name,
				"attempts", attempt.Number,
				"elapsed_ms", attempt.Elapsed(o.now()).Milliseconds(),
				"last_error", err,
			)
			return attempt, err
		}

		delay := backoffFor(o.schedule, attempt.Number)
		o.logger.InfoContext(ctx, "retrying after transient failure",
			"operation", name,
			"attempt", attempt.Number,
			"max_attempts", attempt.Max,
			"backoff_ms", delay.Milliseconds(),
			"error", err,
		)
		if err := o.sleeper.Sleep(ctx, delay); err != nil {
			return attempt, err
		}
		attempt = next
	}
}
