// Package instrumentation provides OpenTelemetry metrics and tracing for the
// triage service.
//
// The Provider owns the meter and tracer providers and the metrics recorder.
// Metrics can be exported via Prometheus (default), OTLP, or stdout; tracing
// via OTLP or stdout, disabled by default. Configuration comes from
// environment variables (see DefaultConfig).
package instrumentation
