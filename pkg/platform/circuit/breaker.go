// Package circuit provides a consecutive-failure circuit breaker for calls
// to external subsystems.
package circuit

import "sync"

// Transition reports a state change caused by recording an outcome.
type Transition int

const (
	// None means the recorded outcome did not change the circuit state.
	None Transition = iota
	// Opened means the recorded failure tripped the circuit.
	Opened
	// Closed means the recorded success restored the circuit.
	Closed
)

// Breaker is a two-state (closed/open) breaker driven by consecutive
// outcomes. It never blocks calls itself; callers decide what an open
// circuit means (fail fast, fall back, or annotate the error).
type Breaker struct {
	mu        sync.Mutex
	name      string
	open      bool
	failures  int
	successes int
	trip      int
	restore   int
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithTripThreshold sets how many consecutive failures open the circuit.
// Default is 5.
func WithTripThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.trip = n
		}
	}
}

// WithRestoreThreshold sets how many consecutive successes close an open
// circuit. Default is 3.
func WithRestoreThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.restore = n
		}
	}
}

// New creates a closed Breaker named for logging.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{name: name, trip: 5, restore: 3}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Name returns the breaker's name.
func (b *Breaker) Name() string {
	return b.name
}

// IsOpen reports whether the circuit is currently open.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// OnFailure records a failed call and returns Opened if this failure
// tripped the circuit.
func (b *Breaker) OnFailure() Transition {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes = 0
	if b.open {
		return None
	}
	b.failures++
	if b.failures >= b.trip {
		b.open = true
		return Opened
	}
	return None
}

// OnSuccess records a successful call and returns Closed if this success
// restored an open circuit.
func (b *Breaker) OnSuccess() Transition {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		b.failures = 0
		return None
	}
	b.successes++
	if b.successes >= b.restore {
		b.open = false
		b.failures = 0
		b.successes = 0
		return Closed
	}
	return None
}
