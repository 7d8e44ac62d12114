package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DisplayEvent is the read-side projection of an audit event: normalized,
// categorized and annotated for presentation.
type DisplayEvent struct {
	Event
	Category     string `json:"category"`
	RelativeTime string `json:"relativeTime"`
}

// categoryKeywords drive the keyword-heuristic classification over an
// event's module and activity name. First match wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Security", []string{"incident", "security", "alert", "suspicious"}},
	{"Authentication", []string{"login", "logout", "session", "otp", "auth", "passcode"}},
	{"Data Export", []string{"export", "report", "download"}},
	{"HR Records", []string{"employee", "lifecycle", "attendance", "template", "onboarding", "leave"}},
}

// Reader serves the audit list endpoint. It reads through the same
// primary-then-fallback chain as the write path.
type Reader struct {
	primary  Store
	fallback Store
	logger   *slog.Logger
	maxList  int
	now      func() time.Time
}

// NewReader creates a Reader. primary may be nil. maxList caps every
// response regardless of the requested limit.
func NewReader(primary, fallback Store, logger *slog.Logger, maxList int) *Reader {
	if maxList <= 0 {
		maxList = 200
	}
	return &Reader{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		maxList:  maxList,
		now:      time.Now,
	}
}

// List returns up to limit events, most recent first, enriched for display.
func (r *Reader) List(ctx context.Context, limit int) ([]DisplayEvent, error) {
	if limit <= 0 || limit > r.maxList {
		limit = r.maxList
	}

	events, err := r.load(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	display := make([]DisplayEvent, 0, len(events))
	for _, event := range events {
		display = append(display, DisplayEvent{
			Event:        normalize(event),
			Category:     classify(event),
			RelativeTime: relativeTime(event.OccurredAt, now),
		})
	}
	return display, nil
}

func (r *Reader) load(ctx context.Context, limit int) ([]Event, error) {
	if r.primary != nil {
		events, err := r.primary.List(ctx, limit)
		if err == nil {
			return events, nil
		}
		r.logger.Warn("primary audit store read failed, using file fallback", "error", err)
	}
	return r.fallback.List(ctx, limit)
}

// normalize fills safe defaults for any missing field so the display layer
// never renders blanks.
func normalize(event Event) Event {
	if event.ActivityName == "" {
		event.ActivityName = "Unknown activity"
	}
	if event.Status == "" {
		event.Status = StatusCompleted
	}
	if event.Module == "" {
		event.Module = "general"
	}
	if event.PerformedBy == "" {
		event.PerformedBy = "system"
	}
	if event.Sensitivity == "" {
		event.Sensitivity = NonSensitive
	}
	return event
}

func classify(event Event) string {
	haystack := strings.ToLower(event.Module + " " + event.ActivityName)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(haystack, kw) {
				return c.category
			}
		}
	}
	return "General"
}

func relativeTime(at, now time.Time) string {
	if at.IsZero() {
		return "unknown"
	}

	d := now.Sub(at)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return at.Format("02 Jan 2006")
	}
}
