package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "staff_dashboard"

const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// StoreMetrics tracks employee store calls by backend, operation and result.
type StoreMetrics struct {
	ops     *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewStoreMetrics registers the store collectors with reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "employee_store",
			Name:      "operations_total",
			Help:      "Employee store operations by backend, operation and result.",
		}, []string{"backend", "op", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "employee_store",
			Name:      "operation_duration_seconds",
			Help:      "Employee store operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),
	}
	reg.MustRegister(m.ops, m.latency)
	return m
}

func (m *StoreMetrics) Observe(backend, op, result string, d time.Duration) {
	m.ops.WithLabelValues(backend, op, result).Inc()
	m.latency.WithLabelValues(backend, op).Observe(d.Seconds())
}

// Count returns the counter for the given labels.
func (m *StoreMetrics) Count(backend, op, result string) prometheus.Counter {
	return m.ops.WithLabelValues(backend, op, result)
}

// WorkspaceMetrics tracks live client workspaces.
type WorkspaceMetrics struct {
	Active  prometheus.Gauge
	Evicted prometheus.Counter
}

func NewWorkspaceMetrics(reg prometheus.Registerer) *WorkspaceMetrics {
	m := &WorkspaceMetrics{
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "workspace",
			Name:      "active",
			Help:      "Client workspaces currently held in memory.",
		}),
		Evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workspace",
			Name:      "evicted_total",
			Help:      "Client workspaces stopped after idling.",
		}),
	}
	reg.MustRegister(m.Active, m.Evicted)
	return m
}
