// Package httpserver runs the engine's HTTP surface with graceful shutdown.
//
// It wraps net/http.Server: Run blocks until the context is cancelled, an
// interrupt arrives, or the listener fails, then drains in-flight requests
// within the shutdown timeout. HealthCheckHandler serves liveness and
// readiness probes.
package httpserver
