package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for rate limiting.
type Metrics struct {
	Allowed   *prometheus.CounterVec
	Denied    *prometheus.CounterVec
	Evictions prometheus.Counter
	Buckets   prometheus.Gauge
}

// New registers and returns rate limit metrics collectors.
func New() *Metrics {
	return &Metrics{
		Allowed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hrcore_ratelimit_allowed_total",
			Help: "Total number of requests allowed by the rate limiter",
		}, []string{"scope"}),
		Denied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hrcore_ratelimit_denied_total",
			Help: "Total number of requests denied by the rate limiter",
		}, []string{"scope"}),
		Evictions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hrcore_ratelimit_bucket_evictions_total",
			Help: "Total number of live buckets evicted under capacity pressure",
		}),
		Buckets: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "hrcore_ratelimit_buckets",
			Help: "Current number of tracked rate limit buckets",
		}),
	}
}
