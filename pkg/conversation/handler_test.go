package conversation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/rreusch2/fluxstreams/pkg/lead"
	"github.com/rreusch2/fluxstreams/pkg/prompt"
	"github.com/rreusch2/fluxstreams/pkg/providers"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/metrics"
)

type stubGenerator struct {
	content string
	err     error

	mu    sync.Mutex
	calls int
	last  *providers.ChatRequest
}

func (g *stubGenerator) Generate(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.last = req
	if g.err != nil {
		return nil, g.err
	}
	return &providers.ChatResponse{Content: g.content, FinishReason: providers.FinishReasonStop}, nil
}

func (g *stubGenerator) Name() string { return "stub" }

func (g *stubGenerator) Health() providers.Health { return providers.Health{IsHealthy: g.err == nil} }

type stubDeliverer struct {
	err      error
	calls    int
	payload  map[string]string
	ctxAlive bool
}

func (d *stubDeliverer) Deliver(ctx context.Context, payload map[string]string) error {
	d.calls++
	d.payload = payload
	d.ctxAlive = ctx.Err() == nil
	return d.err
}

type recordedMetrics struct {
	turns      []string
	tiers      []string
	deliveries []string
	errs       []string
}

func (r *recordedMetrics) RecordTurn(o string) { r.turns = append(r.turns, o) }
func (r *recordedMetrics) RecordGeneration(string, time.Duration) {}
func (r *recordedMetrics) RecordProviderError(_, et string) { r.errs = append(r.errs, et) }
func (r *recordedMetrics) UpdateProviderHealth(string, bool) {}
func (r *recordedMetrics) RecordLeadParse(tier string) { r.tiers = append(r.tiers, tier) }
func (r *recordedMetrics) RecordDelivery(status string) { r.deliveries = append(r.deliveries, status) }

func newTestHandler(t *testing.T, gen providers.Generator, del Deliverer, rec Recorder) *Handler {
	t.Helper()
	cfg := Config{
		Prompt:       prompt.Static("SYSTEM"),
		Generator:    gen,
		Confirmation: "Thanks! I've noted your information and Reid will be in touch.",
		InquiryType:  "AI Chat Lead",
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:      rec,
	}
	if del != nil {
		cfg.Deliverer = del
	}
	h, err := NewHandler(cfg)
	if err != nil {
		t.Fatalf("NewHandler() error: %v", err)
	}
	return h
}

func TestNewHandler_Validation(t *testing.T) {
	if _, err := NewHandler(Config{Generator: &stubGenerator{}}); err == nil {
		t.Error("expected error without prompt")
	}
	if _, err := NewHandler(Config{Prompt: prompt.Static("x")}); err == nil {
		t.Error("expected error without generator")
	}
}

func TestHandle_PlainReply(t *testing.T) {
	gen := &stubGenerator{content: "Hello! How can I help?"}
	del := &stubDeliverer{}
	rec := &recordedMetrics{}
	h := newTestHandler(t, gen, del, rec)

	history := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hey"},
	}
	res, err := h.Handle(context.Background(), "what's <new>?", history)
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if res.Reply != "Hello! How can I help?" || res.Lead != nil || res.Delivered {
		t.Errorf("unexpected result %+v", res)
	}
	if del.calls != 0 {
		t.Error("deliverer must not be called without a marker")
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}

	msgs := gen.last.Messages
	if len(msgs) != 4 {
		t.Fatalf("expected system + 2 history + user, got %d", len(msgs))
	}
	if msgs[0].Role != providers.RoleSystem || msgs[0].Content != "SYSTEM" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[1].Content != "hi" || msgs[2].Role != providers.RoleAssistant {
		t.Errorf("history not forwarded in order: %+v", msgs[1:3])
	}
	if msgs[3].Role != providers.RoleUser || msgs[3].Content != "what&#39;s &lt;new&gt;?" {
		t.Errorf("user message = %+v, want HTML-escaped", msgs[3])
	}
	if len(rec.turns) != 1 || rec.turns[0] != metrics.TurnReply {
		t.Errorf("turns = %v", rec.turns)
	}
}

func TestHandle_LeadCaptured(t *testing.T) {
	gen := &stubGenerator{content: "Thanks! \n[LEAD_INFO_COLLECTED] FirstName: Jane, LastName: Doe, Email: jane@x.com, Phone: N/A, Message: Loved your site, call me."}
	del := &stubDeliverer{}
	rec := &recordedMetrics{}
	h := newTestHandler(t, gen, del, rec)

	res, err := h.Handle(context.Background(), "yes", nil)
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if res.Reply != "Thanks!" {
		t.Errorf("reply = %q, want Thanks!", res.Reply)
	}
	if res.Lead == nil || res.Lead.Tier != lead.TierStructured {
		t.Fatalf("lead = %+v", res.Lead)
	}
	want := lead.Record{FirstName: "Jane", LastName: "Doe", Email: "jane@x.com", Phone: "N/A", Message: "Loved your site, call me."}
	got := res.Lead.Record
	if got.FirstName != want.FirstName || got.LastName != want.LastName || got.Email != want.Email ||
		got.Phone != want.Phone || got.Message != want.Message {
		t.Errorf("record = %+v, want %+v", got, want)
	}

	if !res.Delivered || del.calls != 1 {
		t.Errorf("delivered = %v, calls = %d", res.Delivered, del.calls)
	}
	if del.payload["InquiryType"] != "AI Chat Lead" || del.payload["Email"] != "jane@x.com" {
		t.Errorf("payload = %v", del.payload)
	}
	if len(rec.tiers) != 1 || rec.tiers[0] != "structured" {
		t.Errorf("tiers = %v", rec.tiers)
	}
	if len(rec.deliveries) != 1 || rec.deliveries[0] != metrics.DeliveryDelivered {
		t.Errorf("deliveries = %v", rec.deliveries)
	}
}

func TestHandle_BlankReplyUsesConfirmation(t *testing.T) {
	gen := &stubGenerator{content: "  [LEAD_INFO_COLLECTED] FirstName: Sam, Email: sam@y.com, Message: Hi, nice work, thanks"}
	h := newTestHandler(t, gen, &stubDeliverer{}, nil)

	res, err := h.Handle(context.Background(), "yes", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reply != "Thanks! I've noted your information and Reid will be in touch." {
		t.Errorf("reply = %q", res.Reply)
	}
	if res.Lead.Record.LastName != lead.NotProvided || res.Lead.Record.Message != "Hi, nice work, thanks" {
		t.Errorf("record = %+v", res.Lead.Record)
	}
}

func TestHandle_DeliveryFailureIsSilent(t *testing.T) {
	gen := &stubGenerator{content: "Done!\n[LEAD_INFO_COLLECTED] FirstName: A, Email: a@b.co, Message: hi"}
	del := &stubDeliverer{err: errors.New("webhook down")}
	rec := &recordedMetrics{}
	h := newTestHandler(t, gen, del, rec)

	res, err := h.Handle(context.Background(), "yes", nil)
	if err != nil {
		t.Fatalf("delivery failure surfaced to caller: %v", err)
	}
	if res.Reply != "Done!" || res.Delivered {
		t.Errorf("unexpected result %+v", res)
	}
	if del.calls != 1 {
		t.Errorf("deliverer called %d times, want exactly 1", del.calls)
	}
	if len(rec.deliveries) != 1 || rec.deliveries[0] != metrics.DeliveryFailed {
		t.Errorf("deliveries = %v", rec.deliveries)
	}
}

func TestHandle_NoDeliverer(t *testing.T) {
	gen := &stubGenerator{content: "ok [LEAD_INFO_COLLECTED] FirstName: A, Email: a@b.co, Message: hi"}
	h := newTestHandler(t, gen, nil, nil)

	res, err := h.Handle(context.Background(), "yes", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Delivered || res.Lead == nil {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestHandle_DeliveryOutlivesCancelledRequest(t *testing.T) {
	gen := &stubGenerator{content: "ok [LEAD_INFO_COLLECTED] FirstName: A, Email: a@b.co, Message: hi"}
	del := &stubDeliverer{}
	h := newTestHandler(t, gen, del, nil)

	// The stub generator ignores ctx, so cancelling up front reaches delivery.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Handle(ctx, "yes", nil); err != nil {
		t.Fatal(err)
	}
	if !del.ctxAlive {
		t.Error("delivery context should not inherit request cancellation")
	}
}

func TestHandle_DegradedLeadStillDelivered(t *testing.T) {
	raw := "Got it [LEAD_INFO_COLLECTED] garbage without fields"
	gen := &stubGenerator{content: raw}
	del := &stubDeliverer{}
	rec := &recordedMetrics{}
	h := newTestHandler(t, gen, del, rec)

	res, err := h.Handle(context.Background(), "yes", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Lead.Tier != lead.TierDegraded || res.Lead.Outcome != lead.ParseFailed {
		t.Errorf("lead = %+v", res.Lead)
	}
	if !strings.Contains(del.payload["Message"], raw) {
		t.Errorf("degraded payload should quote raw response, got %q", del.payload["Message"])
	}
	if del.payload["InquiryType"] != lead.DegradedInquiryType {
		t.Errorf("inquiry type = %q", del.payload["InquiryType"])
	}
	if len(rec.tiers) != 1 || rec.tiers[0] != "degraded" {
		t.Errorf("tiers = %v", rec.tiers)
	}
}

func TestHandle_UpstreamFailure(t *testing.T) {
	tests := []struct {
		name     string
		gen      *stubGenerator
		wantType string
	}{
		{"timeout", &stubGenerator{err: &providers.TimeoutError{Provider: "stub", Timeout: time.Second}}, "timeout"},
		{"auth", &stubGenerator{err: &providers.AuthError{Provider: "stub"}}, "auth"},
		{"blank content", &stubGenerator{content: "   "}, "empty"},
		{"other", &stubGenerator{err: errors.New("boom")}, "server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			del := &stubDeliverer{}
			rec := &recordedMetrics{}
			h := newTestHandler(t, tt.gen, del, rec)

			res, err := h.Handle(context.Background(), "hello", nil)
			if res != nil {
				t.Errorf("expected no result, got %+v", res)
			}
			var upErr *UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if upErr.Provider != "stub" || upErr.Unwrap() == nil {
				t.Errorf("unexpected error %+v", upErr)
			}
			if del.calls != 0 {
				t.Error("no delivery on upstream failure")
			}
			if tt.gen.calls != 1 {
				t.Errorf("generator called %d times, want 1 (no retry)", tt.gen.calls)
			}
			if len(rec.errs) != 1 || rec.errs[0] != tt.wantType {
				t.Errorf("error types = %v, want [%s]", rec.errs, tt.wantType)
			}
		})
	}
}

func TestHandle_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		message string
		history []Message
	}{
		{"empty message", "", nil},
		{"whitespace message", "  \n\t", nil},
		{"unknown role", "hi", []Message{{Role: "tool", Content: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{content: "unused"}
			h := newTestHandler(t, gen, nil, nil)

			_, err := h.Handle(context.Background(), tt.message, tt.history)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if gen.calls != 0 {
				t.Error("invalid input must be rejected before generation")
			}
		})
	}
}

func TestHandle_Concurrent(t *testing.T) {
	gen := &stubGenerator{content: "reply"}
	h := newTestHandler(t, gen, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.Handle(context.Background(), "hi", nil); err != nil {
				t.Errorf("Handle() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if gen.calls != 20 {
		t.Errorf("calls = %d, want 20", gen.calls)
	}
}

func TestHandle_Spans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	gen := &stubGenerator{content: "Great!\n[LEAD_INFO_COLLECTED] FirstName: Jane, Email: jane@x.com, Message: Hi"}
	h, err := NewHandler(Config{
		Prompt:    prompt.Static("SYSTEM"),
		Generator: gen,
		Deliverer: &stubDeliverer{},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer:    tp.Tracer("test"),
	})
	if err != nil {
		t.Fatalf("NewHandler() error: %v", err)
	}

	if _, err := h.Handle(context.Background(), "hi", nil); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	names := map[string]bool{}
	for _, s := range exporter.GetSpans() {
		names[s.Name] = true
	}
	for _, want := range []string{"conversation.turn", "provider.generate", "lead.deliver"} {
		if !names[want] {
			t.Errorf("missing span %q, got %v", want, names)
		}
	}
}
