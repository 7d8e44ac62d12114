// Package service exposes the rate limiter consumed by HTTP middleware and
// any endpoint that throttles by custom identifier.
package service

import (
	"log/slog"
	"sync/atomic"
	"time"

	"hrcore/internal/ratelimit/metrics"
	"hrcore/internal/ratelimit/models"
	"hrcore/internal/ratelimit/store/bucket"
)

// Limiter evaluates fixed-window rate limits over the shared bucket store.
type Limiter struct {
	store   *bucket.InMemoryStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	// lastEvictions is the store eviction count already reported to the
	// metrics counter. Atomic: Consume runs concurrently from middleware.
	lastEvictions atomic.Uint64
}

// Option configures the Limiter.
type Option func(*Limiter)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithClock injects a clock for deterministic retry timing in tests.
// Pass the same clock given to the bucket store.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a Limiter over the given bucket store.
func New(store *bucket.InMemoryStore, logger *slog.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Consume counts one request against scope+identifier and reports whether it
// is allowed. Counts within a window are monotonic; a new window starts only
// at or after the previous window's reset time.
func (l *Limiter) Consume(scope, identifier string, limit int, window time.Duration) models.Result {
	key := models.BucketKey(scope, identifier)
	count, resetAt := l.store.Increment(key, window)

	result := models.Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Count:     count,
		Remaining: max(0, limit-count),
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = bucket.RetryAfterSeconds(resetAt, l.now())
	}

	l.observe(scope, result)
	return result
}

func (l *Limiter) observe(scope string, result models.Result) {
	if l.metrics == nil {
		return
	}

	if result.Allowed {
		l.metrics.Allowed.WithLabelValues(scope).Inc()
	} else {
		l.metrics.Denied.WithLabelValues(scope).Inc()
	}
	l.metrics.Buckets.Set(float64(l.store.Len()))

	// Publish only the delta since the last report. The CAS loop keeps the
	// delta exact when Consume races with itself.
	evictions := l.store.Evictions()
	for {
		last := l.lastEvictions.Load()
		if evictions <= last {
			return
		}
		if l.lastEvictions.CompareAndSwap(last, evictions) {
			l.metrics.Evictions.Add(float64(evictions - last))
			return
		}
	}
}
