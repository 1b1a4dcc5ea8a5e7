// Package telemetry groups the observability packages of fluxstreams.
//
//   - logging: slog construction, file rotation and PII redaction
//   - metrics: Prometheus collectors for turns, leads and deliveries
//   - tracing: OpenTelemetry spans and W3C trace propagation
//   - health: readiness checks and version reporting
//
// Lead contact details pass through every turn that captures one, so the
// logging package redacts emails and phone numbers by default.
package telemetry
