package audit

import (
	"context"

	dErrors "hrcore/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

// Store is the persistence contract shared by the primary structured store
// and the local file fallback.
type Store interface {
	// Append persists one event. Implementations must never mutate existing
	// records.
	Append(ctx context.Context, event Event) error
	// List returns up to limit events, most recent first by OccurredAt.
	// limit <= 0 means no cap.
	List(ctx context.Context, limit int) ([]Event, error)
}
