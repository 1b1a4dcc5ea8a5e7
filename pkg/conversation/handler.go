package conversation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/rreusch2/fluxstreams/pkg/lead"
	"github.com/rreusch2/fluxstreams/pkg/prompt"
	"github.com/rreusch2/fluxstreams/pkg/providers"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/logging"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/metrics"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/tracing"
)

// Deliverer forwards a lead payload to the automation backend.
type Deliverer interface {
	Deliver(ctx context.Context, payload map[string]string) error
}

// Recorder receives turn metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordTurn(outcome string)
	RecordGeneration(provider string, duration time.Duration)
	RecordProviderError(provider, errorType string)
	UpdateProviderHealth(provider string, healthy bool)
	RecordLeadParse(tier string)
	RecordDelivery(status string)
}

// Config wires a Handler. Prompt and Generator are required.
type Config struct {
	Prompt    prompt.Source
	Generator providers.Generator

	// Deliverer receives captured leads. Nil logs and drops them.
	Deliverer Deliverer

	// Confirmation replaces a blank reply in front of the marker.
	Confirmation string

	// InquiryType labels delivered leads.
	InquiryType string

	Logger  *slog.Logger
	Metrics Recorder

	// Tracer starts turn spans. Nil disables tracing.
	Tracer trace.Tracer
}

// TurnResult is what one turn produced.
type TurnResult struct {
	// Reply is the text shown to the user. Never blank.
	Reply string

	// Lead is set when the model emitted the marker, whatever the parse
	// tier.
	Lead *lead.Result

	// Delivered reports whether the lead webhook accepted the lead.
	Delivered bool
}

// Handler runs conversation turns. It is safe for concurrent use.
type Handler struct {
	prompt       prompt.Source
	generator    providers.Generator
	deliverer    Deliverer
	confirmation string
	inquiryType  string
	logger       *slog.Logger
	metrics      Recorder
	tracer       trace.Tracer
}

// NewHandler validates cfg and builds a Handler.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Prompt == nil {
		return nil, errors.New("conversation: prompt source is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("conversation: generator is required")
	}

	h := &Handler{
		prompt:       cfg.Prompt,
		generator:    cfg.Generator,
		deliverer:    cfg.Deliverer,
		confirmation: cfg.Confirmation,
		inquiryType:  cfg.InquiryType,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		tracer:       cfg.Tracer,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.metrics == nil {
		h.metrics = (*metrics.Collector)(nil)
	}
	if h.tracer == nil {
		h.tracer = noop.NewTracerProvider().Tracer("conversation")
	}
	return h, nil
}

// Handle runs one turn: at most one generation call and at most one
// delivery call.
func (h *Handler) Handle(ctx context.Context, userMessage string, history []Message) (result *TurnResult, err error) {
	ctx, span := h.tracer.Start(ctx, "conversation.turn", trace.WithAttributes(
		attribute.Int(tracing.AttrHistoryLen, len(history)),
	))
	defer func() {
		tracing.SetStatus(span, err)
		span.End()
	}()
	logger := logging.FromContext(ctx, h.logger)

	if strings.TrimSpace(userMessage) == "" {
		h.metrics.RecordTurn(metrics.TurnInvalid)
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	for i, m := range history {
		if !m.Role.Valid() {
			h.metrics.RecordTurn(metrics.TurnInvalid)
			return nil, fmt.Errorf("%w: history[%d].role %q is not user, assistant or system", ErrInvalidInput, i, m.Role)
		}
	}

	req := &providers.ChatRequest{Messages: h.compose(userMessage, history)}
	provider := h.generator.Name()

	resp, err := h.generate(ctx, provider, req)
	if err != nil {
		h.metrics.RecordProviderError(provider, errorType(err))
		h.metrics.RecordTurn(metrics.TurnUpstreamError)
		logger.Error("generation failed", "provider", provider, "error", err)
		return nil, &UpstreamError{Provider: provider, Cause: err}
	}
	if resp.Truncated() {
		logger.Warn("reply truncated by token limit", "provider", provider, "model", resp.Model)
	}

	reply, res := lead.Extract(resp.Content)
	tracing.SetLeadAttributes(span, res.Outcome.String(), res.Tier.String())
	if !res.HasLead() {
		h.metrics.RecordTurn(metrics.TurnReply)
		return &TurnResult{Reply: reply}, nil
	}

	logger.Info("lead marker detected", "tier", res.Tier.String(), "outcome", res.Outcome.String())
	if strings.TrimSpace(reply) == "" {
		logger.Warn("no reply text before lead marker, using confirmation")
		reply = h.confirmation
	}

	h.metrics.RecordLeadParse(res.Tier.String())
	if res.Degraded() {
		logger.Warn("lead parsed with fallback strategy",
			"tier", res.Tier.String(),
			"diagnostic", res.Diagnostic,
		)
	}
	if res.Record.Sparse() {
		logger.Warn("lead is missing first name, email and message")
	}

	delivered := h.deliver(ctx, logger, &res.Record)
	span.SetAttributes(attribute.Bool(tracing.AttrDelivered, delivered))
	h.metrics.RecordTurn(metrics.TurnLead)

	return &TurnResult{Reply: reply, Lead: &res, Delivered: delivered}, nil
}

// generate makes the single model call. Blank content counts as a failure.
func (h *Handler) generate(ctx context.Context, provider string, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	ctx, span := h.tracer.Start(ctx, "provider.generate")
	defer span.End()

	start := time.Now()
	resp, err := h.generator.Generate(ctx, req)
	h.metrics.RecordGeneration(provider, time.Since(start))
	h.metrics.UpdateProviderHealth(provider, h.generator.Health().IsHealthy)

	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = &providers.EmptyResponseError{Provider: provider, FinishReason: resp.FinishReason}
	}
	if err == nil {
		tracing.SetProviderAttributes(span, provider, resp.Model)
		span.SetAttributes(attribute.String(tracing.AttrFinishReason, resp.FinishReason))
	}
	tracing.SetStatus(span, err)
	return resp, err
}

func (h *Handler) compose(userMessage string, history []Message) []providers.Message {
	msgs := make([]providers.Message, 0, len(history)+2)
	msgs = append(msgs, providers.Message{Role: providers.RoleSystem, Content: h.prompt.SystemPrompt()})
	for _, m := range history {
		msgs = append(msgs, providers.Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, providers.Message{Role: providers.RoleUser, Content: html.EscapeString(userMessage)})
	return msgs
}

// deliver sends the lead once. Failures are logged and counted only.
func (h *Handler) deliver(ctx context.Context, logger *slog.Logger, rec *lead.Record) bool {
	if h.deliverer == nil {
		logger.Error("no lead deliverer configured, lead dropped", "lead", rec.String())
		h.metrics.RecordDelivery(metrics.DeliveryFailed)
		return false
	}

	// A client hanging up must not cancel delivery of a confirmed lead.
	ctx, span := h.tracer.Start(context.WithoutCancel(ctx), "lead.deliver")
	defer span.End()

	err := h.deliverer.Deliver(ctx, rec.Payload(h.inquiryType))
	tracing.SetStatus(span, err)
	if err != nil {
		logger.Error("lead delivery failed", "error", err, "lead", rec.String())
		h.metrics.RecordDelivery(metrics.DeliveryFailed)
		return false
	}

	logger.Info("lead delivered")
	h.metrics.RecordDelivery(metrics.DeliveryDelivered)
	return true
}

func errorType(err error) string {
	var (
		authErr    *providers.AuthError
		rateErr    *providers.RateLimitError
		timeoutErr *providers.TimeoutError
		emptyErr   *providers.EmptyResponseError
		cfgErr     *providers.ConfigError
	)
	switch {
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &rateErr):
		return "rate_limit"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &emptyErr):
		return "empty"
	case errors.As(err, &cfgErr):
		return "config"
	default:
		return "server_error"
	}
}
