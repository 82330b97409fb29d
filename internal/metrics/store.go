package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gated_community",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Count of opaque store operations.",
	}, []string{"operation", "backend", "status"})
	storeRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gated_community",
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Duration of opaque store operations.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"operation", "backend", "status"})
)

// Store tracks metrics for one opaque store backend.
type Store struct {
	backend string
}

// NewStore creates a Store metrics collector.
func NewStore(backend string) *Store {
	if backend == "" {
		backend = "unknown"
	}
	return &Store{backend: backend}
}

// Observe records duration and status of a store operation.
func (m Store) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	storeRequestsTotal.WithLabelValues(operation, m.backend, status).Inc()
	storeRequestDuration.WithLabelValues(operation, m.backend, status).Observe(time.Since(started).Seconds())
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
