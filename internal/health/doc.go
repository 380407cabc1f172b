// Package health provides liveness and readiness endpoints.
package health
