// Package memory provides the in-memory incident store.
package memory

import (
	"context"
	"sort"
	"sync"

	"hrcore/internal/detection"
	dErrors "hrcore/pkg/domain-errors"
)

// Store is a mutex-guarded in-memory incident store.
type Store struct {
	mu        sync.RWMutex
	incidents []detection.Incident
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

func (s *Store) Create(_ context.Context, incident detection.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incidents = append(s.incidents, incident)
	return nil
}

func (s *Store) LatestByFingerprint(_ context.Context, fingerprint string) (detection.Incident, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest detection.Incident
	found := false
	for _, incident := range s.incidents {
		if incident.Fingerprint != fingerprint {
			continue
		}
		if !found || incident.DetectedAt.After(latest.DetectedAt) {
			latest = incident
			found = true
		}
	}
	return latest, found, nil
}

func (s *Store) List(_ context.Context, limit int) ([]detection.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]detection.Incident, len(s.incidents))
	copy(out, s.incidents)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateStatus moves an incident through triage (open, acknowledged,
// resolved).
func (s *Store) UpdateStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.incidents {
		if s.incidents[i].ID == id {
			s.incidents[i].Status = status
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, "incident not found")
}

// Len reports the number of stored incidents. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.incidents)
}
