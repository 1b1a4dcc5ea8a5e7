package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/rreusch2/fluxstreams/pkg/providers"
)

// Client is a providers.Generator for any OpenAI-compatible chat
// completions API. DeepSeek and xAI are reached by pointing BaseURL at
// their /v1 roots.
type Client struct {
	client openaisdk.Client
	config providers.Config
	health *providers.HealthTracker
}

// NewClient creates an adapter from cfg. Extra request options are appended
// after the defaults, which lets tests swap the HTTP client.
//
// The SDK's own retry loop is disabled: a turn makes at most one upstream call.
func NewClient(cfg providers.Config, opts ...option.RequestOption) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "api_key",
			Message:  "API key is required",
		}
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "base_url",
			Message:  "base URL is required",
		}
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "model",
			Message:  "model is required",
		}
	}

	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(&http.Client{}),
		option.WithMaxRetries(0),
	}

	return &Client{
		client: openaisdk.NewClient(append(base, opts...)...),
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

// Generate sends one chat completion request.
func (c *Client) Generate(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	slog.Debug("sending chat completion",
		"provider", c.config.Name,
		"model", params.Model,
		"messages", len(params.Messages),
	)

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(callCtx, params)
	latency := time.Since(start)
	if err != nil {
		err = c.classify(err)
		c.health.Record(err)
		return nil, err
	}

	if len(resp.Choices) == 0 {
		err := &providers.EmptyResponseError{Provider: c.config.Name}
		c.health.Record(err)
		return nil, err
	}

	choice := resp.Choices[0]
	finish := string(choice.FinishReason)
	if strings.TrimSpace(choice.Message.Content) == "" {
		err := &providers.EmptyResponseError{Provider: c.config.Name, FinishReason: finish}
		c.health.Record(err)
		return nil, err
	}

	c.health.Record(nil)
	return &providers.ChatResponse{
		Model:        resp.Model,
		Content:      choice.Message.Content,
		FinishReason: finish,
		Usage: providers.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		Latency: latency,
	}, nil
}

func (c *Client) buildParams(req *providers.ChatRequest) (openaisdk.ChatCompletionNewParams, error) {
	if req == nil || len(req.Messages) == 0 {
		return openaisdk.ChatCompletionNewParams{}, fmt.Errorf("messages are required")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.config.Model
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case providers.RoleSystem:
			messages = append(messages, openaisdk.SystemMessage(msg.Content))
		case providers.RoleUser:
			messages = append(messages, openaisdk.UserMessage(msg.Content))
		case providers.RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(msg.Content))
		default:
			return openaisdk.ChatCompletionNewParams{}, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(model),
		Messages: messages,
	}

	temperature := c.config.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	if temperature > 0 {
		params.Temperature = openaisdk.Float(temperature)
	}

	maxTokens := c.config.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(maxTokens))
	}

	return params, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || c.config.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.config.Timeout)
}

func (c *Client) classify(err error) error {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		var header http.Header
		if apiErr.Response != nil {
			header = apiErr.Response.Header
		}
		return providers.ClassifyStatus(c.config.Name, apiErr.StatusCode, header, apiErr.Error(), err)
	}
	return providers.ClassifyTransportError(c.config.Name, c.config.Timeout, err)
}

var _ providers.Generator = (*Client)(nil)
