package pattern

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// compilerMetrics contains Prometheus metrics for the compile cache.
type compilerMetrics struct {
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	compileErrors prometheus.Counter
	cacheSize     prometheus.Gauge
}

var (
	compilerMetricsInstance *compilerMetrics
	compilerMetricsOnce     sync.Once
)

// getCompilerMetrics returns the singleton compiler metrics instance.
func getCompilerMetrics() *compilerMetrics {
	compilerMetricsOnce.Do(func() {
		compilerMetricsInstance = &compilerMetrics{
			cacheHits: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "navrouter",
					Subsystem: "pattern",
					Name:      "compile_cache_hits_total",
					Help:      "Total number of compiled pattern cache hits",
				},
			),
			cacheMisses: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "navrouter",
					Subsystem: "pattern",
					Name:      "compile_cache_misses_total",
					Help:      "Total number of compiled pattern cache misses",
				},
			),
			compileErrors: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "navrouter",
					Subsystem: "pattern",
					Name:      "compile_errors_total",
					Help:      "Total number of patterns that failed to compile",
				},
			),
			cacheSize: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "navrouter",
					Subsystem: "pattern",
					Name:      "compile_cache_size",
					Help:      "Current number of entries across compile caches",
				},
			),
		}
	})
	return compilerMetricsInstance
}
