package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_OpensAfterFailureThreshold(t *testing.T) {
	b := New("audit-primary", WithFailureThreshold(3))

	for i := 0; i < 2; i++ {
		fallback, change := b.RecordFailure()
		assert.False(t, fallback)
		assert.False(t, change.Opened)
	}

	fallback, change := b.RecordFailure()
	assert.True(t, fallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())
}

func TestBreaker_ClosesAfterSuccessThreshold(t *testing.T) {
	b := New("audit-primary", WithFailureThreshold(1), WithSuccessThreshold(2))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	usePrimary, _ := b.RecordSuccess()
	assert.False(t, usePrimary)

	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.False(t, b.IsOpen())
}

func TestBreaker_SuccessResetsFailureStreak(t *testing.T) {
	b := New("audit-primary", WithFailureThreshold(2))

	b.RecordFailure()
	b.RecordSuccess()
	fallback, _ := b.RecordFailure()

	assert.False(t, fallback, "failure streak should restart after a success")
}

func TestBreaker_FailureWhileOpenRestartsRecovery(t *testing.T) {
	b := New("audit-primary", WithFailureThreshold(1), WithSuccessThreshold(2))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.RecordSuccess()
	fallback, change := b.RecordFailure()
	assert.True(t, fallback)
	assert.False(t, change.Opened, "already open, no new transition")

	// The earlier success no longer counts toward closing.
	usePrimary, _ := b.RecordSuccess()
	assert.False(t, usePrimary)
	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
}
