package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"hrcore/internal/audit/metrics"
	dErrors "hrcore/pkg/domain-errors"
	"hrcore/pkg/platform/circuit"
	"hrcore/pkg/requestcontext"
)

// Hook is invoked once per successfully persisted event. The detection
// engine registers itself here.
type Hook func(event Event)

// Recorder is the single write path for audit events. It enriches entries
// with request context, persists them with primary-then-file fallback, and
// notifies the detection hook after each durable write.
type Recorder struct {
	primary  Store // optional structured store; nil when not configured
	fallback Store // local file store, always present
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
	hook     Hook

	// probeInterval bounds how often the primary is retried while the
	// circuit is open.
	probeInterval    time.Duration
	mu               sync.Mutex
	lastPrimaryProbe time.Time

	async  bool
	events chan Event
	wg     sync.WaitGroup
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithPrimary sets the primary structured store. Without it every write goes
// straight to the file fallback.
func WithPrimary(store Store) Option {
	return func(r *Recorder) {
		r.primary = store
	}
}

// WithAsyncBuffer switches the recorder to asynchronous writes with the given
// buffer size. Callers no longer await persistence; persistence failures are
// logged and counted, not returned. Must be selected explicitly.
func WithAsyncBuffer(size int) Option {
	return func(r *Recorder) {
		if size > 0 {
			r.events = make(chan Event, size)
			r.async = true
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithHook registers the post-persist hook.
func WithHook(hook Hook) Option {
	return func(r *Recorder) {
		r.hook = hook
	}
}

// New creates a Recorder writing to the file fallback store, optionally
// fronted by a primary structured store.
func New(fallback Store, logger *slog.Logger, opts ...Option) *Recorder {
	r := &Recorder{
		fallback:      fallback,
		logger:        logger,
		breaker:       circuit.New("audit-primary", circuit.WithFailureThreshold(3)),
		probeInterval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.async {
		r.wg.Add(1)
		go r.processEvents()
	}
	return r
}

// Record persists one audit event. The entry is enriched with the request's
// source IP, parsed user agent and request ID before persistence.
//
// In sync mode the caller awaits durability and receives any terminal error.
// In async mode Record never blocks; a full buffer drops the event (counted
// and logged).
func (r *Recorder) Record(ctx context.Context, entry Entry) (Event, error) {
	event := r.buildEvent(ctx, entry)

	if r.async {
		select {
		case r.events <- event:
		default:
			if r.metrics != nil {
				r.metrics.DroppedAsync.Inc()
			}
			r.logger.Warn("audit buffer full, event dropped",
				"activity", event.ActivityName,
				"performed_by", event.PerformedBy,
			)
		}
		return event, nil
	}

	if err := r.persist(ctx, event); err != nil {
		return event, err
	}
	r.notify(event)
	return event, nil
}

func (r *Recorder) buildEvent(ctx context.Context, entry Entry) Event {
	event := Event{
		ID:           uuid.NewString(),
		ActivityName: entry.ActivityName,
		Status:       entry.Status,
		OccurredAt:   requestcontext.Now(ctx).UTC(),
		Module:       entry.Module,
		PerformedBy:  entry.PerformedBy,
		Sensitivity:  entry.Sensitivity,
	}
	if event.Status == "" {
		event.Status = StatusCompleted
	}
	if event.Sensitivity == "" {
		event.Sensitivity = NonSensitive
	}
	if event.Module == "" {
		event.Module = "general"
	}
	if event.PerformedBy == "" {
		event.PerformedBy = "system"
	}

	event.Metadata = make(map[string]any, len(entry.Metadata)+4)
	for k, v := range entry.Metadata {
		event.Metadata[k] = v
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		event.Metadata[MetaSourceIP] = ip
	}
	if ua := requestcontext.UserAgent(ctx); ua != "" {
		info := parseUserAgent(ua)
		event.Metadata[MetaBrowser] = info.Browser
		event.Metadata[MetaOS] = info.OS
		event.Metadata[MetaDeviceClass] = info.DeviceClass
	}
	if reqID := requestcontext.RequestID(ctx); reqID != "" {
		event.Metadata[MetaRequestID] = reqID
	}

	return event
}

// persist writes the event to the primary store when it is configured and
// its circuit allows, falling back to the file store on any failure. Only a
// failure of both backends is returned: that is a data-loss event and is
// logged loudly.
func (r *Recorder) persist(ctx context.Context, event Event) error {
	if r.shouldTryPrimary() {
		err := r.primary.Append(ctx, event)
		if err == nil {
			r.breaker.RecordSuccess()
			if r.metrics != nil {
				r.metrics.Writes.WithLabelValues("primary").Inc()
			}
			return nil
		}

		_, change := r.breaker.RecordFailure()
		if change.Opened {
			r.logger.Warn("audit primary store circuit opened", "error", err)
		}
		r.logger.Warn("primary audit store write failed, using file fallback",
			"error", err,
			"activity", event.ActivityName,
		)
		if r.metrics != nil {
			r.metrics.Fallbacks.Inc()
		}
	}

	if err := r.fallback.Append(ctx, event); err != nil {
		if r.metrics != nil {
			r.metrics.WriteFailures.Inc()
		}
		r.logger.Error("audit event lost: all backends failed",
			"error", err,
			"activity", event.ActivityName,
			"performed_by", event.PerformedBy,
		)
		return dErrors.Wrap(err, dErrors.CodeDependencyUnavailable, "audit persistence failed on all backends")
	}
	if r.metrics != nil {
		r.metrics.Writes.WithLabelValues("file").Inc()
	}
	return nil
}

// shouldTryPrimary gates primary attempts on the circuit state, allowing a
// probe write every probeInterval while the circuit is open.
func (r *Recorder) shouldTryPrimary() bool {
	if r.primary == nil {
		return false
	}
	if !r.breaker.IsOpen() {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastPrimaryProbe) < r.probeInterval {
		return false
	}
	r.lastPrimaryProbe = time.Now()
	return true
}

// SetHook registers the post-persist hook after construction. The detection
// engine is built after the recorder (it writes follow-up events through
// it), so the hook is attached here rather than as an option.
func (r *Recorder) SetHook(hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = hook
}

func (r *Recorder) notify(event Event) {
	r.mu.Lock()
	hook := r.hook
	r.mu.Unlock()
	if hook != nil {
		hook(event)
	}
}

// processEvents runs in a goroutine and persists events from the channel.
func (r *Recorder) processEvents() {
	defer r.wg.Done()
	for event := range r.events {
		if err := r.persist(context.Background(), event); err != nil {
			// Already logged and counted inside persist.
			continue
		}
		r.notify(event)
	}
}

// Close shuts down the async recorder and waits for pending events to drain.
func (r *Recorder) Close() {
	if r.async && r.events != nil {
		close(r.events)
		r.wg.Wait()
	}
}

// Seed populates the active backend with a fixed set of example records when
// it is empty, so the audit trail is never presented empty on first run.
func (r *Recorder) Seed(ctx context.Context) error {
	backend := r.fallback
	if r.primary != nil {
		backend = r.primary
	}

	existing, err := backend.List(ctx, 1)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeDependencyUnavailable, "could not inspect audit backend for seeding")
	}
	if len(existing) > 0 {
		return nil
	}

	for _, event := range seedEvents() {
		if err := backend.Append(ctx, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeDependencyUnavailable, "could not seed audit backend")
		}
	}
	r.logger.Info("seeded empty audit backend", "events", len(seedEvents()))
	return nil
}
