package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registryOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gated_community",
		Subsystem: "registry",
		Name:      "operations_total",
		Help:      "Count of registry operations.",
	}, []string{"operation", "status"})
	registryOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gated_community",
		Subsystem: "registry",
		Name:      "operation_duration_seconds",
		Help:      "Duration of registry operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
	verifierOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gated_community",
		Subsystem: "verifier",
		Name:      "outcomes_total",
		Help:      "Count of access verification outcomes.",
	}, []string{"outcome"})
	verifierDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gated_community",
		Subsystem: "verifier",
		Name:      "duration_seconds",
		Help:      "Duration of access verification.",
		Buckets:   []float64{.01, .1, .5, 1, 2, 3, 5, 10},
	}, []string{"outcome"})
)

// Community tracks registry and verifier metrics.
type Community struct{}

func NewCommunity() *Community {
	return &Community{}
}

func (Community) ObserveRegistry(operation string, err error, started time.Time) {
	status := statusOf(err)
	registryOperationsTotal.WithLabelValues(operation, status).Inc()
	registryOperationDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}

func (Community) ObserveVerify(outcome string, started time.Time) {
	if outcome == "" {
		outcome = "unknown"
	}
	verifierOutcomesTotal.WithLabelValues(outcome).Inc()
	verifierDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}
