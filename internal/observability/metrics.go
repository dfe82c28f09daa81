package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperationLatency records key-value store latency by backend and operation.
	StoreOperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carmarket_store_operation_seconds",
		Help:    "Key-value store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation"})

	// StoreErrors counts failed store operations by backend and operation.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carmarket_store_errors_total",
		Help: "Total number of failed key-value store operations",
	}, []string{"backend", "operation"})

	// StoreCorruptions counts collections reset after failing to decode.
	StoreCorruptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carmarket_store_corruptions_total",
		Help: "Total number of stored collections reset because their JSON could not be decoded",
	}, []string{"key"})

	// AssistantRequests counts assistant gateway calls by operation and outcome.
	AssistantRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carmarket_assistant_requests_total",
		Help: "Total assistant gateway calls by operation and outcome",
	}, []string{"operation", "outcome"})

	// AssistantLatency records assistant gateway latency by operation.
	AssistantLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carmarket_assistant_latency_seconds",
		Help:    "Assistant gateway call latency in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"operation"})
)

// TrackStoreOp returns a function that records the latency of a store
// operation, and its failure when err is non-nil.
func TrackStoreOp(backend, operation string) func(err error) {
	start := time.Now()
	return func(err error) {
		StoreOperationLatency.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
		if err != nil {
			StoreErrors.WithLabelValues(backend, operation).Inc()
		}
	}
}
