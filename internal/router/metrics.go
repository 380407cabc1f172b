package router

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// lookupMetrics contains Prometheus metrics for the lookup cache.
type lookupMetrics struct {
	lookupHits    prometheus.Counter
	lookupMisses  prometheus.Counter
	lookupErrors  prometheus.Counter
	invalidations prometheus.Counter
	matches       *prometheus.CounterVec
}

var (
	lookupMetricsInstance *lookupMetrics
	lookupMetricsOnce     sync.Once
)

// getLookupMetrics returns the singleton lookup metrics instance.
func getLookupMetrics() *lookupMetrics {
	lookupMetricsOnce.Do(func() {
		lookupMetricsInstance = &lookupMetrics{
			lookupHits: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "navrouter",
					Subsystem: "router",
					Name:      "lookup_cache_hits_total",
					Help:      "Total number of lookup cache hits",
				},
			),
			lookupMisses: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "navrouter",
					Subsystem: "router",
					Name:      "lookup_cache_misses_total",
					Help:      "Total number of lookup cache misses",
				},
			),
			lookupErrors: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "navrouter",
					Subsystem: "router",
					Name:      "lookup_cache_errors_total",
					Help:      "Total number of lookup cache backend errors",
				},
			),
			invalidations: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "navrouter",
					Subsystem: "router",
					Name:      "lookup_cache_invalidations_total",
					Help:      "Total number of lookup cache invalidations",
				},
			),
			matches: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "navrouter",
					Subsystem: "router",
					Name:      "matches_total",
					Help:      "Total number of resolved lookups by outcome",
				},
				[]string{"result"},
			),
		}
	})
	return lookupMetricsInstance
}
