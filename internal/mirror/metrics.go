package mirror

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the engine.
type Metrics struct {
	// Registry owns these metrics. Exposed so the /metrics endpoint can
	// serve it.
	Registry *prometheus.Registry

	mirrored   *prometheus.CounterVec
	suppressed *prometheus.CounterVec
	failures   *prometheus.CounterVec
}

// NewMetrics creates the engine metrics on a fresh registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		mirrored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mirror_transactions_mirrored_total",
			Help: "Transactions mirrored into the destination ledger, by destination type and action.",
		}, []string{"type", "action"}),
		suppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mirror_transactions_suppressed_total",
			Help: "Transactions intentionally not mirrored.",
		}, []string{"reason"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mirror_failures_total",
			Help: "Per-transaction and upstream failures, by kind.",
		}, []string{"kind"}),
	}
}

// Mirrored records a successful create or update
func (m *Metrics) Mirrored(transactionType, action string) {
	if m == nil {
		return
	}
	m.mirrored.WithLabelValues(transactionType, action).Inc()
}

// Suppressed records an intentionally skipped transaction
func (m *Metrics) Suppressed(reason string) {
	if m == nil {
		return
	}
	m.suppressed.WithLabelValues(reason).Inc()
}

// Failure records a failed transaction by error kind
func (m *Metrics) Failure(kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(kind).Inc()
}
