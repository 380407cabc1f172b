// Package middleware provides gin middleware for the navrouter HTTP API.
//
//   - RequestID: request identifier injection
//   - Logging: structured access logging
//   - Recovery: panic recovery with stack trace logging
//   - Metrics: request counters and latency histograms
//   - Tracing: OpenTelemetry server spans
//
// # Usage
//
//	engine := gin.New()
//	engine.Use(
//	    middleware.Recovery(logger),
//	    middleware.RequestID(),
//	    middleware.Tracing("navrouter"),
//	    middleware.Logging(logger),
//	    middleware.Metrics(metrics),
//	)
package middleware
