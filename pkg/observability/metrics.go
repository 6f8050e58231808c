// Package observability exposes the Prometheus instrumentation used by the
// aggregation engine and the content repositories.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors. A nil *Metrics is valid and records
// nothing, so components can be constructed without instrumentation in
// tests.
type Metrics struct {
	aggregationRequests *prometheus.CounterVec
	aggregationDuration prometheus.Histogram
	fetchFailures       *prometheus.CounterVec
	voteOperations      *prometheus.CounterVec
}

// NewMetrics registers the collectors with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		aggregationRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graph_aggregation_requests_total",
			Help: "Aggregation requests by outcome.",
		}, []string{"outcome"}),
		aggregationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "graph_aggregation_duration_seconds",
			Help:    "End-to-end aggregation latency.",
			Buckets: prometheus.DefBuckets,
		}),
		fetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graph_fetch_failures_total",
			Help: "Per-type fetch failures absorbed by partial-failure handling.",
		}, []string{"node_type"}),
		voteOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "content_vote_operations_total",
			Help: "Vote operations by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
}

// ObserveAggregation records one finished aggregation.
func (m *Metrics) ObserveAggregation(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.aggregationRequests.WithLabelValues(outcome).Inc()
	m.aggregationDuration.Observe(elapsed.Seconds())
}

// ObserveFetchFailure records one absorbed per-type fetch failure.
func (m *Metrics) ObserveFetchFailure(nodeType string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(nodeType).Inc()
}

// ObserveVote records one vote operation.
func (m *Metrics) ObserveVote(kind, outcome string) {
	if m == nil {
		return
	}
	m.voteOperations.WithLabelValues(kind, outcome).Inc()
}
