// Package observability provides logging, metrics, and tracing for the
// navigation router.
//
// Structured logging goes through zap, metrics are exported from a private
// Prometheus registry, and spans are produced with OpenTelemetry and
// exported over OTLP when an endpoint is configured.
//
// # Logging
//
//	logger, err := observability.NewLogger(observability.LogConfig{Level: "info", Format: "json"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("route resolved",
//	    observability.String("pathname", "/users/42"),
//	    observability.String("route", "/users/:id"),
//	)
//
// # Metrics
//
//	metrics := observability.NewMetrics("navrouter")
//	metrics.RecordNavigation("navigate", "/users/:id")
//	handler := metrics.Handler()
//
// # Tracing
//
//	tracer, err := observability.NewTracer(observability.TracerConfig{ServiceName: "navrouter", Enabled: true})
//	defer tracer.Shutdown(ctx)
//
//	ctx, span := otel.Tracer("navrouter/navigation").Start(ctx, "navigation.navigate")
//	defer span.End()
package observability
