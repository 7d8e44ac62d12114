// Package detection promotes suspicious audit event patterns into
// deduplicated security incidents.
package detection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"hrcore/internal/alert"
	"hrcore/internal/audit"
	"hrcore/internal/detection/metrics"
	"hrcore/internal/detection/tracer"
	"hrcore/internal/ratelimit/store/bucket"
)

// securityModule tags engine-generated audit events; events from this module
// are never re-evaluated.
const securityModule = "security"

// EventRecorder is the audit write path the engine uses for follow-up
// events.
type EventRecorder interface {
	Record(ctx context.Context, entry audit.Entry) (audit.Event, error)
}

// Dispatcher sends incident notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, n alert.Notification) []alert.DeliveryResult
}

// Engine consumes persisted audit events, evaluates threshold rules over
// windowed counts, and raises deduplicated incidents. Every failure inside
// the engine is contained; nothing ever propagates to the request whose
// audit write triggered evaluation.
type Engine struct {
	rules       []Rule
	counter     *bucket.InMemoryStore
	incidents   Store
	dispatcher  Dispatcher
	recorder    EventRecorder
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      tracer.Tracer
	dedupWindow time.Duration
	now         func() time.Time

	queue chan audit.Event
	wg    sync.WaitGroup
}

// Option configures the Engine.
type Option func(*Engine)

// WithRules replaces the default rule set.
func WithRules(rules []Rule) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}

// WithCounter injects the windowed counter store, letting tests share a
// fake clock between counting and dedup.
func WithCounter(counter *bucket.InMemoryStore) Option {
	return func(e *Engine) {
		e.counter = counter
	}
}

// WithQueueSize bounds the evaluation queue. Events arriving while the
// queue is full are dropped and counted.
func WithQueueSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.queue = make(chan audit.Event, size)
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTracer sets the tracer. Defaults to noop.
func WithTracer(t tracer.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithClock injects the time source for deterministic dedup tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine and starts its evaluation worker. Call Close to
// drain and stop it.
func New(incidents Store, dispatcher Dispatcher, recorder EventRecorder, logger *slog.Logger, dedupWindow time.Duration, opts ...Option) *Engine {
	e := &Engine{
		rules:       DefaultRules(),
		counter:     bucket.NewInMemoryStore(),
		incidents:   incidents,
		dispatcher:  dispatcher,
		recorder:    recorder,
		logger:      logger,
		tracer:      tracer.NewNoop(),
		dedupWindow: dedupWindow,
		now:         time.Now,
		queue:       make(chan audit.Event, 256),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.wg.Add(1)
	go e.run()
	return e
}

// HandleEvent is the audit post-persist hook. It never blocks: a full queue
// drops the event and counts the drop.
func (e *Engine) HandleEvent(event audit.Event) {
	if event.AutoGenerated() || event.Module == securityModule {
		return
	}

	select {
	case e.queue <- event:
	default:
		if e.metrics != nil {
			e.metrics.DroppedEvents.Inc()
		}
		e.logger.Warn("detection queue full, event dropped", "activity", event.ActivityName)
	}
}

// Close stops the worker after draining queued events.
func (e *Engine) Close() {
	close(e.queue)
	e.wg.Wait()
}

func (e *Engine) run() {
	defer e.wg.Done()
	for event := range e.queue {
		e.evaluate(event)
	}
}

// evaluate runs every rule against one event. Panics and errors are
// contained here.
func (e *Engine) evaluate(event audit.Event) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("detection evaluation panicked", "panic", r, "activity", event.ActivityName)
		}
	}()

	ctx, span := e.tracer.Start(context.Background(), "detection.evaluate",
		tracer.String("module", event.Module),
		tracer.String("activity", event.ActivityName),
	)
	defer span.End(nil)

	if e.metrics != nil {
		e.metrics.Evaluations.Inc()
	}

	for _, rule := range e.rules {
		if !rule.Match(event) {
			continue
		}
		key := rule.Key(event)
		if key == "" || key == "unknown" {
			continue
		}

		count, _ := e.counter.Increment("detect:"+rule.ID+":"+key, rule.Window)
		if count != rule.Threshold {
			continue
		}
		span.AddEvent("rule fired", tracer.String("rule", rule.ID), tracer.Int("count", count))
		e.raise(ctx, rule, key)
	}
}

// raise creates the incident for a fired rule unless an open incident with
// the same fingerprint exists inside the dedup window. An acknowledged or
// resolved incident no longer suppresses; if the behavior recurs after
// triage it warrants a fresh incident.
func (e *Engine) raise(ctx context.Context, rule Rule, key string) {
	fingerprint := rule.ID + ":" + key
	now := e.now().UTC()

	existing, found, err := e.incidents.LatestByFingerprint(ctx, fingerprint)
	if err != nil {
		e.logger.Error("incident lookup failed", "fingerprint", fingerprint, "error", err)
		return
	}
	if found && existing.Status == IncidentOpen && now.Sub(existing.DetectedAt) < e.dedupWindow {
		if e.metrics != nil {
			e.metrics.DedupSuppressed.WithLabelValues(rule.ID).Inc()
		}
		e.logger.Info("duplicate detection suppressed",
			"rule", rule.ID,
			"fingerprint", fingerprint,
		)
		return
	}

	incident := Incident{
		ID:          uuid.NewString(),
		Code:        rule.Code,
		Title:       rule.Title,
		Severity:    rule.Severity,
		DetectedAt:  now,
		Fingerprint: fingerprint,
		ActorKey:    key,
		Status:      IncidentOpen,
	}
	if err := e.incidents.Create(ctx, incident); err != nil {
		e.logger.Error("incident create failed", "fingerprint", fingerprint, "error", err)
		return
	}
	if e.metrics != nil {
		e.metrics.Incidents.WithLabelValues(rule.ID).Inc()
	}
	e.logger.Warn("security incident created",
		"code", incident.Code,
		"severity", incident.Severity,
		"actor_key", key,
	)

	e.dispatch(ctx, incident)
	e.recordFollowUp(ctx, incident)
}

func (e *Engine) dispatch(ctx context.Context, incident Incident) {
	if e.dispatcher == nil {
		return
	}

	ctx, span := e.tracer.Start(ctx, "detection.dispatch",
		tracer.String("incident_code", incident.Code),
		tracer.String("severity", incident.Severity),
	)
	defer span.End(nil)

	e.dispatcher.Dispatch(ctx, alert.Notification{
		Subject:  fmt.Sprintf("[%s] %s", incident.Severity, incident.Title),
		Body:     fmt.Sprintf("%s detected for %s at %s.", incident.Title, incident.ActorKey, incident.DetectedAt.Format(time.RFC3339)),
		Severity: incident.Severity,
		Payload: map[string]any{
			"id":          incident.ID,
			"code":        incident.Code,
			"title":       incident.Title,
			"severity":    incident.Severity,
			"detectedAt":  incident.DetectedAt,
			"fingerprint": incident.Fingerprint,
		},
	})
}

// recordFollowUp writes the audit record of the automatic incident
// creation, marked so the engine never re-evaluates it.
func (e *Engine) recordFollowUp(ctx context.Context, incident Incident) {
	if e.recorder == nil {
		return
	}

	_, err := e.recorder.Record(ctx, audit.Entry{
		ActivityName: fmt.Sprintf("Security incident created: %s", incident.Title),
		Status:       audit.StatusCompleted,
		Module:       securityModule,
		PerformedBy:  "system",
		Sensitivity:  audit.Sensitive,
		Metadata: map[string]any{
			audit.MetaAutoGenerated: true,
			"incident_id":           incident.ID,
			"incident_code":         incident.Code,
		},
	})
	if err != nil {
		e.logger.Error("incident follow-up audit write failed", "incident_id", incident.ID, "error", err)
	}
}
