package retry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// retryMetrics contains Prometheus metrics for retried operations.
type retryMetrics struct {
	attempts *prometheus.CounterVec
	results  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	retryMetricsInstance *retryMetrics
	retryMetricsOnce     sync.Once
)

// getRetryMetrics returns the singleton retry metrics instance.
func getRetryMetrics() *retryMetrics {
	retryMetricsOnce.Do(func() {
		retryMetricsInstance = &retryMetrics{
			attempts: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "navrouter",
					Subsystem: "retry",
					Name:      "attempts_total",
					Help:      "Total number of retry attempts after the first",
				},
				[]string{"operation"},
			),
			results: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "navrouter",
					Subsystem: "retry",
					Name:      "results_total",
					Help:      "Total number of retried operations by result",
				},
				[]string{"operation", "result"},
			),
			duration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "navrouter",
					Subsystem: "retry",
					Name:      "duration_seconds",
					Help:      "Total duration of retried operations including backoff",
					Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
				},
				[]string{"operation", "result"},
			),
		}
	})
	return retryMetricsInstance
}

func (m *retryMetrics) observe(operation string, success bool, elapsed time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.results.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation, result).Observe(elapsed.Seconds())
}
