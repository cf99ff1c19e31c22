// Package middleware provides HTTP middleware for the operational endpoint
// that ships alongside the synchronization client: Prometheus request
// metrics and OpenTelemetry request tracing.
package middleware
