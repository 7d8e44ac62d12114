package audit

import (
	"time"

	"github.com/google/uuid"
)

// seedEvents returns the fixed example records written into an empty backend
// on first run.
func seedEvents() []Event {
	base := time.Now().UTC().Add(-24 * time.Hour)

	entries := []struct {
		activity    string
		status      Status
		module      string
		performedBy string
		sensitivity Sensitivity
	}{
		{"Portal initialized", StatusCompleted, "settings", "system", NonSensitive},
		{"Imported employee directory", StatusCompleted, "employees", "system", Sensitive},
		{"Reviewed onboarding template", StatusApproved, "templates", "hr@corp.example", NonSensitive},
		{"Generated attendance export", StatusCompleted, "exports", "grc@corp.example", Sensitive},
		{"Updated leave policy", StatusPending, "lifecycle", "hr@corp.example", NonSensitive},
	}

	events := make([]Event, 0, len(entries))
	for i, e := range entries {
		events = append(events, Event{
			ID:           uuid.NewString(),
			ActivityName: e.activity,
			Status:       e.status,
			OccurredAt:   base.Add(time.Duration(i) * time.Hour),
			Module:       e.module,
			PerformedBy:  e.performedBy,
			Sensitivity:  e.sensitivity,
			Metadata:     map[string]any{"seed": true},
		})
	}
	return events
}
