package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vyrodovalexey/navrouter/internal/observability"
)

// middlewareMetrics contains process-wide middleware metrics.
type middlewareMetrics struct {
	panicsRecovered prometheus.Counter
}

var (
	middlewareMetricsInstance *middlewareMetrics
	middlewareMetricsOnce     sync.Once
)

func getMiddlewareMetrics() *middlewareMetrics {
	middlewareMetricsOnce.Do(func() {
		middlewareMetricsInstance = &middlewareMetrics{
			panicsRecovered: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "navrouter",
					Subsystem: "middleware",
					Name:      "panics_recovered_total",
					Help:      "Total number of panics recovered",
				},
			),
		}
	})
	return middlewareMetricsInstance
}

// unmatchedRoute labels requests that hit no registered handler.
const unmatchedRoute = "unmatched"

// Metrics returns a middleware that records request metrics. The route
// label is the registered handler path, so label cardinality stays bounded.
func Metrics(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
