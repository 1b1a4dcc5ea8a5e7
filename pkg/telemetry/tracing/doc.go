// Package tracing provides OpenTelemetry spans for chat turns and lead
// delivery.
//
// # Overview
//
// A Tracer wraps an SDK tracer provider that exports spans to an OTLP gRPC
// collector. When tracing is disabled a noop tracer is returned, so callers
// never need to branch on configuration.
//
// Spans produced by fluxstreams:
//
//	HTTP POST /api/chatbot        server span, one per request
//	  conversation.turn           one turn, lead outcome attributes
//	    provider.generate         the single model call
//	    lead.deliver              webhook POST, traceparent injected
//
// # Trace Context Propagation
//
// Incoming traceparent/tracestate headers are extracted so a caller's trace
// continues through the turn. The webhook request carries the current
// context onward to the automation backend.
//
// # Sampling
//
//   - always: sample every trace
//   - never: sample nothing
//   - ratio: sample a fraction of new traces
//
// Every sampler is parent based: a sampled upstream trace stays sampled.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "conversation.turn")
//	defer span.End()
package tracing
