// Package bucket implements the fixed-window counter store backing both the
// rate limiter and the security detection engine's windowed event counting.
package bucket

import (
	"math"
	"sync"
	"time"
)

// window holds one fixed-window counter. The count is monotonically
// non-decreasing until ResetAt passes, at which point the next increment
// starts a fresh window.
type window struct {
	count   int
	resetAt time.Time
}

// InMemoryStore is a process-local fixed-window counter map.
//
// State is not shared across process instances. Horizontally scaled
// deployments get per-instance limits; a distributed store would be required
// for cross-instance consistency.
type InMemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*window
	cap     int
	now     func() time.Time

	evictions uint64
}

// Option configures the store.
type Option func(*InMemoryStore)

// WithCapacity sets the hard cap on tracked buckets. Default is 10000.
func WithCapacity(n int) Option {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.cap = n
		}
	}
}

// WithClock injects a clock for deterministic window tests.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemoryStore creates a bounded fixed-window counter store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		buckets: make(map[string]*window),
		cap:     10000,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Increment bumps the counter for key within its current fixed window and
// returns the new count and the window's reset time. A key whose window has
// passed starts over at count 1.
func (s *InMemoryStore) Increment(key string, windowSize time.Duration) (count int, resetAt time.Time) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.buckets[key]
	if w == nil || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(windowSize)}
		s.buckets[key] = w
	}
	w.count++

	if len(s.buckets) > s.cap {
		s.evict(key, now)
	}

	return w.count, w.resetAt
}

// Count returns the current count for key without incrementing, zero when the
// key is untracked or its window has passed.
func (s *InMemoryStore) Count(key string) int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.buckets[key]
	if w == nil || !now.Before(w.resetAt) {
		return 0
	}
	return w.count
}

// Reset clears the counter for a key.
func (s *InMemoryStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
}

// Len returns the number of tracked buckets.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Evictions returns the total number of live buckets removed under capacity
// pressure. Expired sweeps are not counted.
func (s *InMemoryStore) Evictions() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictions
}

// evict restores the capacity bound. Expired buckets are swept first; if the
// map is still over cap, live buckets are removed in map iteration order.
// That is an intentional approximation, not LRU: victims are effectively
// arbitrary, which is acceptable because losing a bucket only forgets part of
// a window's count. The just-touched key is never evicted.
// Caller must hold s.mu.
func (s *InMemoryStore) evict(keep string, now time.Time) {
	for k, w := range s.buckets {
		if !now.Before(w.resetAt) {
			delete(s.buckets, k)
		}
	}

	for k := range s.buckets {
		if len(s.buckets) <= s.cap {
			return
		}
		if k == keep {
			continue
		}
		delete(s.buckets, k)
		s.evictions++
	}
}

// RetryAfterSeconds computes the whole seconds until resetAt, at least 1.
func RetryAfterSeconds(resetAt, now time.Time) int {
	secs := int(math.Ceil(resetAt.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
