package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the audit log.
type Metrics struct {
	Writes        *prometheus.CounterVec
	Fallbacks     prometheus.Counter
	WriteFailures prometheus.Counter
	DroppedAsync  prometheus.Counter
}

// New registers and returns audit metrics collectors.
func New() *Metrics {
	return &Metrics{
		Writes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hrcore_audit_writes_total",
			Help: "Total number of audit events persisted, by backend",
		}, []string{"backend"}),
		Fallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hrcore_audit_fallbacks_total",
			Help: "Total number of primary store failures that fell back to the file store",
		}),
		WriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hrcore_audit_write_failures_total",
			Help: "Total number of audit events lost because every backend failed",
		}),
		DroppedAsync: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hrcore_audit_dropped_async_total",
			Help: "Total number of audit events dropped because the async buffer was full",
		}),
	}
}
