// Package circuit trips a write path to its fallback after repeated failures.
//
// The audit recorder is the main consumer: when the primary event store keeps
// erroring, the breaker opens and the recorder routes events to the file
// fallback until the primary proves healthy again.
package circuit

import "sync"

// StateChange reports a transition that happened during a Record call.
// At most one of the fields is set.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker is a two-state (closed/open) breaker keyed on consecutive outcomes.
// Closed is the healthy state. A run of failureThreshold failures opens it;
// a run of successThreshold successes while open closes it again. There is no
// timed half-open state, callers decide when to retry an open path.
type Breaker struct {
	mu   sync.Mutex
	name string
	open bool

	// streak counts consecutive failures while closed, consecutive
	// successes while open. Any opposite outcome zeroes it.
	streak int

	failureThreshold int
	successThreshold int
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the breaker.
// Values below 1 are ignored. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets how many consecutive successes close an open
// breaker. Values below 1 are ignored. Default 3.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// New returns a closed Breaker guarding the named path.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Name identifies the guarded path in logs.
func (b *Breaker) Name() string {
	return b.name
}

// IsOpen reports whether the guarded path is currently tripped.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// RecordFailure notes a failed write. useFallback is true when the breaker is
// open after this call; change.Opened is true only on the call that tripped it.
func (b *Breaker) RecordFailure() (useFallback bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		// A failed recovery attempt restarts the success streak.
		b.streak = 0
		return true, StateChange{}
	}

	b.streak++
	if b.streak >= b.failureThreshold {
		b.open = true
		b.streak = 0
		return true, StateChange{Opened: true}
	}
	return false, StateChange{}
}

// RecordSuccess notes a successful write. usePrimary is true when the breaker
// is closed after this call; change.Closed is true only on the call that
// closed it.
func (b *Breaker) RecordSuccess() (usePrimary bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		b.streak = 0
		return true, StateChange{}
	}

	b.streak++
	if b.streak >= b.successThreshold {
		b.open = false
		b.streak = 0
		return true, StateChange{Closed: true}
	}
	return false, StateChange{}
}
