package detection

import "context"

// Store persists incidents. The portal's structured store fronts this in
// production; the in-memory implementation backs tests and single-node runs.
type Store interface {
	Create(ctx context.Context, incident Incident) error

	// LatestByFingerprint returns the most recently detected incident with
	// the given fingerprint, if any.
	LatestByFingerprint(ctx context.Context, fingerprint string) (Incident, bool, error)

	// List returns incidents most recent first, capped by limit when
	// positive.
	List(ctx context.Context, limit int) ([]Incident, error)
}
