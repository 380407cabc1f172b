// Package server exposes the route table over HTTP and hosts the websocket
// navigation bridge.
//
// Endpoints:
//
//	GET /api/match?pathname=  resolve an external pathname
//	GET /api/routes           list the compiled routes
//	GET /api/href?href=       render a link href under the base context
//	GET /healthz              liveness
//	GET /readyz               readiness
//	GET /metrics              Prometheus metrics (path is configurable)
//	GET /ws                   websocket navigation sessions
package server
