package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	t.Run("uses message when present", func(t *testing.T) {
		err := New(CodeRateLimited, "too many login attempts")
		assert.Equal(t, "too many login attempts", err.Error())
	})

	t.Run("falls back to code when message empty", func(t *testing.T) {
		err := &Error{Code: CodeDependencyUnavailable}
		assert.Equal(t, "dependency_unavailable", err.Error())
	})
}

func TestWrap(t *testing.T) {
	t.Run("wraps plain error with new code", func(t *testing.T) {
		base := errors.New("connection refused")
		err := Wrap(base, CodeDependencyUnavailable, "audit store unreachable")

		require.True(t, HasCode(err, CodeDependencyUnavailable))
		assert.ErrorIs(t, err, base)
	})

	t.Run("preserves original domain code", func(t *testing.T) {
		inner := New(CodeForbidden, "access denied")
		err := Wrap(inner, CodeInternal, "while checking module access")

		assert.True(t, HasCode(err, CodeForbidden))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("preserves code through fmt wrapping", func(t *testing.T) {
		inner := New(CodeRateLimited, "limit reached")
		err := fmt.Errorf("login: %w", inner)

		assert.True(t, HasCode(err, CodeRateLimited))
	})
}

func TestHasCode(t *testing.T) {
	t.Run("nil error has no code", func(t *testing.T) {
		assert.False(t, HasCode(nil, CodeInternal))
	})

	t.Run("plain error has no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestIs_MatchesByCode(t *testing.T) {
	a := New(CodeConfiguration, "console provider in production")
	b := New(CodeConfiguration, "missing webhook secret")

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, New(CodeValidation, "bad input"))
}
