package bucket

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests advance time explicitly.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func TestIncrement_WindowLifecycle(t *testing.T) {
	clock := newFakeClock()
	s := NewInMemoryStore(WithClock(clock.Now))

	t.Run("counts are monotonic inside the window", func(t *testing.T) {
		for i := 1; i <= 5; i++ {
			count, _ := s.Increment("login:u@x.com", time.Minute)
			assert.Equal(t, i, count)
		}
	})

	t.Run("reset time is stable inside the window", func(t *testing.T) {
		_, first := s.Increment("login:u@x.com", time.Minute)
		clock.Advance(10 * time.Second)
		_, second := s.Increment("login:u@x.com", time.Minute)
		assert.Equal(t, first, second)
	})

	t.Run("window restarts at resetAt", func(t *testing.T) {
		clock.Advance(time.Minute)
		count, _ := s.Increment("login:u@x.com", time.Minute)
		assert.Equal(t, 1, count)
	})
}

func TestCount(t *testing.T) {
	clock := newFakeClock()
	s := NewInMemoryStore(WithClock(clock.Now))

	assert.Equal(t, 0, s.Count("otp:a@x.com"))

	s.Increment("otp:a@x.com", time.Minute)
	s.Increment("otp:a@x.com", time.Minute)
	assert.Equal(t, 2, s.Count("otp:a@x.com"))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 0, s.Count("otp:a@x.com"), "expired window counts as zero")
}

func TestEviction(t *testing.T) {
	t.Run("expired buckets swept before live eviction", func(t *testing.T) {
		clock := newFakeClock()
		s := NewInMemoryStore(WithClock(clock.Now), WithCapacity(3))

		s.Increment("a", time.Second)
		s.Increment("b", time.Second)
		s.Increment("c", time.Second)
		clock.Advance(2 * time.Second)

		s.Increment("d", time.Minute)
		assert.Equal(t, 1, s.Len(), "expired a,b,c swept; only d remains")
		assert.Zero(t, s.Evictions())
	})

	t.Run("live buckets evicted in iteration order when sweep is not enough", func(t *testing.T) {
		clock := newFakeClock()
		s := NewInMemoryStore(WithClock(clock.Now), WithCapacity(5))

		for i := 0; i < 8; i++ {
			s.Increment(fmt.Sprintf("api:client-%d", i), time.Hour)
		}

		assert.LessOrEqual(t, s.Len(), 5)
		assert.Positive(t, s.Evictions())
	})

	t.Run("just-touched key survives eviction", func(t *testing.T) {
		clock := newFakeClock()
		s := NewInMemoryStore(WithClock(clock.Now), WithCapacity(2))

		s.Increment("x", time.Hour)
		s.Increment("y", time.Hour)
		s.Increment("z", time.Hour)

		assert.Equal(t, 1, s.Count("z"))
	})
}

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Unix(1700000000, 0)

	assert.Equal(t, 60, RetryAfterSeconds(now.Add(time.Minute), now))
	assert.Equal(t, 1, RetryAfterSeconds(now.Add(200*time.Millisecond), now), "rounds up to a full second")
	assert.Equal(t, 1, RetryAfterSeconds(now, now), "never below one second")
	assert.Equal(t, 1, RetryAfterSeconds(now.Add(-time.Minute), now))
}
