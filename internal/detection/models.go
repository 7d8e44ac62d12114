package detection

import (
	"time"

	"hrcore/internal/audit"
)

// Incident statuses.
const (
	IncidentOpen         = "open"
	IncidentAcknowledged = "acknowledged"
	IncidentResolved     = "resolved"
)

// Severity levels, lowest to highest.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Incident is a persisted record of a detected security-relevant condition.
// At most one incident exists per fingerprint within the dedup window.
type Incident struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Severity    string    `json:"severity"`
	DetectedAt  time.Time `json:"detectedAt"`
	Fingerprint string    `json:"fingerprint"`
	ActorKey    string    `json:"actorKey"`
	Status      string    `json:"status"`
}

// Rule describes one threshold detection over the audit stream. A rule fires
// on the event whose windowed count for the same key reaches Threshold
// exactly; later events in the same window are absorbed by the count and the
// fingerprint dedup.
type Rule struct {
	ID        string
	Code      string
	Title     string
	Severity  string
	Threshold int
	Window    time.Duration

	// Match reports whether the event is relevant to this rule.
	Match func(event audit.Event) bool

	// Key extracts the actor-or-IP grouping key. An empty key skips the
	// event for this rule.
	Key func(event audit.Event) string
}
