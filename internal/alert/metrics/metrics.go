// Package metrics exposes Prometheus collectors for alert dispatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the alert dispatch collectors.
type Metrics struct {
	Dispatches *prometheus.CounterVec
	WebhookRTT prometheus.Histogram
}

// New registers and returns the alert metrics.
func New() *Metrics {
	return &Metrics{
		Dispatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hrcore_alert_dispatches_total",
			Help: "Alert channel dispatches by channel, provider and outcome.",
		}, []string{"channel", "provider", "status"}),
		WebhookRTT: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hrcore_alert_webhook_duration_seconds",
			Help:    "Webhook POST round-trip time.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
