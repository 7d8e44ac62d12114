package audit

import "time"

// Status is the outcome recorded for an audited activity.
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusApproved  Status = "Approved"
	StatusPending   Status = "Pending"
	StatusFailed    Status = "Failed"
	StatusRejected  Status = "Rejected"
)

// Sensitivity is a coarse classification used for access and reporting
// policy, not encryption.
type Sensitivity string

const (
	Sensitive    Sensitivity = "Sensitive"
	NonSensitive Sensitivity = "Non-sensitive"
)

// Metadata keys populated by enrichment and by the detection engine.
const (
	MetaSourceIP      = "source_ip"
	MetaBrowser       = "browser"
	MetaOS            = "os"
	MetaDeviceClass   = "device_class"
	MetaRequestID     = "request_id"
	MetaAutoGenerated = "auto_generated"
)

// Event is one append-only audit record. Events are never mutated or deleted
// except by an explicit retention purge outside this core.
type Event struct {
	ID           string         `json:"id"`
	ActivityName string         `json:"activityName"`
	Status       Status         `json:"status"`
	OccurredAt   time.Time      `json:"occurredAt"`
	Module       string         `json:"module"`
	PerformedBy  string         `json:"performedBy"`
	Sensitivity  Sensitivity    `json:"sensitivity"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// AutoGenerated reports whether the event was produced by the detection
// engine itself. Such events are skipped during rule evaluation to avoid
// feedback loops.
func (e Event) AutoGenerated() bool {
	v, ok := e.Metadata[MetaAutoGenerated].(bool)
	return ok && v
}

// SourceIP returns the enriched source IP, "" when absent.
func (e Event) SourceIP() string {
	v, _ := e.Metadata[MetaSourceIP].(string)
	return v
}

// Entry is the caller-supplied portion of an audit record. The recorder
// assigns identity, timestamp and request-derived enrichment.
type Entry struct {
	ActivityName string
	Status       Status
	Module       string
	PerformedBy  string
	Sensitivity  Sensitivity
	Metadata     map[string]any
}
