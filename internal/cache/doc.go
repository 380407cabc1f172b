// Package cache provides key/value backends for memoized route lookups.
//
// Three backends are available: an in-process LRU ("memory"), a shared
// Redis store guarded by a circuit breaker ("redis"), and a disabled cache
// ("none") that never stores anything. All operations are traced with
// OpenTelemetry and counted in Prometheus.
package cache
