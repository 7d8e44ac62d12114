// Package file provides the local append-only fallback audit store: one JSON
// record per line. It exists so an event is never silently dropped when the
// primary backend is unavailable.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"

	"hrcore/internal/audit"
	dErrors "hrcore/pkg/domain-errors"
)

type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not encode audit event")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeDependencyUnavailable, "could not open audit file")
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return dErrors.Wrap(err, dErrors.CodeDependencyUnavailable, "could not append audit event")
	}
	return nil
}

func (s *Store) List(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeDependencyUnavailable, "could not open audit file")
	}
	defer f.Close()

	var events []audit.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var event audit.Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			// A torn write on the final line must not hide the rest of the trail.
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not read audit file")
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.After(events[j].OccurredAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}
