package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrcore/internal/audit"
)

func event(id string, at time.Time) audit.Event {
	return audit.Event{
		ID:           id,
		ActivityName: "Logged in",
		Status:       audit.StatusCompleted,
		OccurredAt:   at,
		Module:       "auth",
		PerformedBy:  "u@x.com",
		Sensitivity:  audit.NonSensitive,
		Metadata:     map[string]any{audit.MetaSourceIP: "203.0.113.7"},
	}
}

func TestAppendAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	s := New(path)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.Append(ctx, event("a", base)))
	require.NoError(t, s.Append(ctx, event("b", base.Add(time.Minute))))
	require.NoError(t, s.Append(ctx, event("c", base.Add(2*time.Minute))))

	t.Run("most recent first", func(t *testing.T) {
		events, err := s.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, "c", events[0].ID)
		assert.Equal(t, "a", events[2].ID)
	})

	t.Run("limit respected", func(t *testing.T) {
		events, err := s.List(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("metadata round-trips", func(t *testing.T) {
		events, err := s.List(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "203.0.113.7", events[0].SourceIP())
	})
}

func TestList_MissingFileIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope.jsonl"))
	events, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestList_SkipsTornLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	s := New(path)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, event("a", time.Now())))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString(`{"id":"torn`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
