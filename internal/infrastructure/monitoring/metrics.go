package monitoring

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	latencyHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	userOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_operations_total",
			Help: "User record operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	registerOnce sync.Once
)

// Init registers custom collectors. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestCounter, latencyHistogram, userOperations)
	})
}

// ObserveRequest records metrics.
func ObserveRequest(path, method, status string, seconds float64) {
	requestCounter.WithLabelValues(path, method, status).Inc()
	latencyHistogram.WithLabelValues(path, method).Observe(seconds)
}

// ObserveUserOperation counts one user operation, e.g. ("create", "conflict").
func ObserveUserOperation(operation, outcome string) {
	userOperations.WithLabelValues(operation, outcome).Inc()
}
