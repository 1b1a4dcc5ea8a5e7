// Package metrics provides Prometheus metrics for fluxstreams.
//
// # Metrics
//
//   - <ns>_http_requests_total{route,status}: HTTP requests served
//   - <ns>_http_request_duration_seconds{route}: HTTP latency
//   - <ns>_turns_total{outcome}: conversation turns by outcome (reply, lead, invalid, upstream_error)
//   - <ns>_generation_duration_seconds{provider}: text generation latency
//   - <ns>_provider_errors_total{provider,error_type}: generation failures by type
//   - <ns>_provider_health{provider}: 1 when the provider is healthy
//   - <ns>_lead_parse_total{tier}: lead records by parse tier
//   - <ns>_lead_delivery_total{status}: webhook deliveries (delivered, failed)
//   - <ns>_rate_limited_total{route}: requests rejected by the rate limiter
//   - <ns>_icebreakers_total{status}: icebreaker generations (generated, failed, skipped)
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//	collector.RecordTurn("lead")
//
// A nil *Collector is valid and records nothing, so components can accept
// one unconditionally.
package metrics
