// Package metrics exposes Prometheus collectors for the detection engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the detection engine collectors.
type Metrics struct {
	Evaluations     prometheus.Counter
	Incidents       *prometheus.CounterVec
	DedupSuppressed *prometheus.CounterVec
	DroppedEvents   prometheus.Counter
}

// New registers and returns the detection metrics.
func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hrcore_detection_evaluations_total",
			Help: "Audit events evaluated by the detection engine.",
		}),
		Incidents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hrcore_detection_incidents_total",
			Help: "Incidents created, by rule.",
		}, []string{"rule"}),
		DedupSuppressed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hrcore_detection_dedup_suppressed_total",
			Help: "Detections suppressed by fingerprint dedup, by rule.",
		}, []string{"rule"}),
		DroppedEvents: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hrcore_detection_dropped_events_total",
			Help: "Audit events dropped because the detection queue was full.",
		}),
	}
}
