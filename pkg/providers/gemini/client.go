// Package gemini adapts Google's Gemini API to providers.Generator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/rreusch2/fluxstreams/pkg/providers"
)

type modelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newGenAIClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// Client is a providers.Generator backed by the Gemini API.
type Client struct {
	models modelsClient
	config providers.Config
	health *providers.HealthTracker
}

// NewClient creates a Gemini adapter from cfg.
func NewClient(ctx context.Context, cfg providers.Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "api_key",
			Message:  "API key is required",
		}
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "model",
			Message:  "model is required",
		}
	}

	client, err := newGenAIClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	slog.Debug("gemini provider ready", "model", cfg.Model, "timeout", cfg.Timeout)
	return &Client{
		models: client.Models,
		config: cfg,
		health: providers.NewHealthTracker(cfg.Name),
	}, nil
}

// Name returns the configured provider label.
func (c *Client) Name() string {
	return c.config.Name
}

// Health returns the adapter's request history.
func (c *Client) Health() providers.Health {
	return c.health.Snapshot()
}

// Generate sends one GenerateContent request.
func (c *Client) Generate(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	model, contents, genCfg, err := c.buildRequest(req)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := c.models.GenerateContent(callCtx, model, contents, genCfg)
	latency := time.Since(start)
	if err != nil {
		err = c.classify(err)
		c.health.Record(err)
		return nil, err
	}

	text := extractVisibleText(resp)
	finish := finishReason(resp)
	if strings.TrimSpace(text) == "" {
		err := &providers.EmptyResponseError{Provider: c.config.Name, FinishReason: finish}
		c.health.Record(err)
		return nil, err
	}

	c.health.Record(nil)
	out := &providers.ChatResponse{
		Model:        model,
		Content:      text,
		FinishReason: finish,
		Latency:      latency,
	}
	if resp.UsageMetadata != nil {
		out.Usage = providers.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

func (c *Client) buildRequest(req *providers.ChatRequest) (string, []*genai.Content, *genai.GenerateContentConfig, error) {
	if req == nil || len(req.Messages) == 0 {
		return "", nil, nil, fmt.Errorf("messages are required")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.config.Model
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	var systemParts []string

	for _, msg := range req.Messages {
		switch msg.Role {
		case providers.RoleSystem:
			if s := strings.TrimSpace(msg.Content); s != "" {
				systemParts = append(systemParts, s)
			}
		case providers.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		case providers.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		default:
			return "", nil, nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	if len(contents) == 0 {
		return "", nil, nil, fmt.Errorf("at least one user or assistant message is required")
	}

	temperature := c.config.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	maxTokens := c.config.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(0)),
		},
	}
	if len(systemParts) > 0 {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(systemParts, "\n\n")}},
		}
	}
	if maxTokens > 0 {
		genCfg.MaxOutputTokens = int32(maxTokens)
	}

	return model, contents, genCfg, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || c.config.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.config.Timeout)
}

func (c *Client) classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return providers.ClassifyStatus(c.config.Name, apiErr.Code, nil, apiErr.Message, err)
	}
	return providers.ClassifyTransportError(c.config.Name, c.config.Timeout, err)
}

func extractVisibleText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// finishReason maps Gemini's reasons onto the OpenAI vocabulary used by
// providers.ChatResponse.
func finishReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	switch resp.Candidates[0].FinishReason {
	case genai.FinishReasonStop:
		return providers.FinishReasonStop
	case genai.FinishReasonMaxTokens:
		return providers.FinishReasonLength
	default:
		return strings.ToLower(string(resp.Candidates[0].FinishReason))
	}
}

var _ providers.Generator = (*Client)(nil)
