package alert

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"hrcore/internal/alert/metrics"
)

// Config carries the provider configuration for all channels.
type Config struct {
	EmailProvider string
	EmailFrom     string
	ResendAPIKey  string

	SMSProvider string
	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	WebhookURLs          []string
	SIEMWebhookURL       string
	EDRWebhookURL        string
	WebhookSigningSecret string
	WebhookTimeout       time.Duration
}

// Dispatcher sends notifications over email, SMS and webhook channels. Each
// channel resolves its own provider and reports its own result; no channel
// failure ever aborts a sibling.
type Dispatcher struct {
	cfg       Config
	directory ContactDirectory
	logger    *slog.Logger
	metrics   *metrics.Metrics
	client    *http.Client
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient injects the HTTP client used for provider and webhook
// calls. Tests point it at httptest servers.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		d.client = client
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// New creates a Dispatcher. directory may be nil, in which case only
// explicit recipients are used.
func New(cfg Config, directory ContactDirectory, logger *slog.Logger, opts ...Option) *Dispatcher {
	if cfg.EmailFrom == "" {
		cfg.EmailFrom = "alerts@hrcore.local"
	}
	if cfg.WebhookTimeout <= 0 {
		cfg.WebhookTimeout = 5 * time.Second
	}
	d := &Dispatcher{
		cfg:       cfg,
		directory: directory,
		logger:    logger,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends the notification over all channels concurrently and
// returns one result per channel. It never returns an error: every failure
// is captured in the owning channel's result.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) []DeliveryResult {
	var email, sms, webhook DeliveryResult

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		email = d.sendEmail(ctx, n)
		return nil
	})
	g.Go(func() error {
		sms = d.sendSMS(ctx, n)
		return nil
	})
	g.Go(func() error {
		webhook = d.sendWebhook(ctx, n)
		return nil
	})
	_ = g.Wait()

	results := []DeliveryResult{email, sms, webhook}
	for _, r := range results {
		if d.metrics != nil {
			d.metrics.Dispatches.WithLabelValues(string(r.Channel), r.Provider, r.Status).Inc()
		}
		d.logger.Info("alert channel dispatched",
			"channel", r.Channel,
			"provider", r.Provider,
			"status", r.Status,
			"reason", r.Reason,
			"delivered", r.Delivered,
		)
	}
	return results
}
