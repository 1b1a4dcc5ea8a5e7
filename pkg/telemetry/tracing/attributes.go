package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for fluxstreams spans.
const (
	AttrProvider     = "fluxstreams.provider"
	AttrModel        = "fluxstreams.model"
	AttrHistoryLen   = "fluxstreams.history.length"
	AttrFinishReason = "fluxstreams.finish_reason"
	AttrLeadOutcome  = "fluxstreams.lead.outcome"
	AttrLeadTier     = "fluxstreams.lead.tier"
	AttrDelivered    = "fluxstreams.lead.delivered"
	AttrRequestID    = "fluxstreams.request_id"
)

// SetProviderAttributes tags a generation span.
func SetProviderAttributes(span trace.Span, provider, model string) {
	span.SetAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
	)
}

// SetLeadAttributes tags a turn span with how the lead marker was handled.
func SetLeadAttributes(span trace.Span, outcome, tier string) {
	span.SetAttributes(
		attribute.String(AttrLeadOutcome, outcome),
		attribute.String(AttrLeadTier, tier),
	)
}
