package provisioning

import "time"

// Attempt is the ephemeral, in-memory record of one submission's retry state.
// It is a value, threaded immutably through the orchestration: each retry
// produces the next Attempt rather than mutating shared state. It is never
// persisted; resubmitting after losing it is safe because the duplicate guard
// and the registrar's idempotency close the gap.
type Attempt struct {
	Number    int // 1-based
	Max       int
	LastErr   error
	StartedAt time.Time
}

// StartAttempt opens the first attempt of a submission.
func StartAttempt(max int, now time.Time) Attempt {
	return Attempt{Number: 1, Max: max, StartedAt: now}
}

// Next returns the follow-up attempt carrying the error that caused the retry.
func (a Attempt) Next(err error) Attempt {
	return Attempt{
		Number:    a.Number + 1,
		Max:       a.Max,
		LastErr:   err,
		StartedAt: a.StartedAt,
	}
}

// Exhausted reports whether no attempts remain.
func (a Attempt) Exhausted() bool {
	return a.Number > a.Max
}

// Elapsed reports how long the submission has been running.
func (a Attempt) Elapsed(now time.Time) time.Duration {
	return now.Sub(a.StartedAt)
}
