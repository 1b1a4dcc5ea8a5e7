package providers

import "time"

// Message represents a single message in a conversation.
type Message struct {
	// Role identifies the message sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text content
	Content string `json:"content"`
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatRequest is a provider-agnostic completion request. Zero values for
// Model, Temperature and MaxTokens fall back to the provider's Config.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse is a provider-agnostic completion response.
type ChatResponse struct {
	// Model is the model that generated the response
	Model string `json:"model"`

	// Content is the text of the first choice
	Content string `json:"content"`

	// FinishReason indicates why generation stopped (stop, length, ...)
	FinishReason string `json:"finish_reason"`

	// Usage contains token consumption information, when reported
	Usage TokenUsage `json:"usage"`

	// Latency is the wall time of the upstream call
	Latency time.Duration `json:"-"`
}

// Truncated reports whether generation stopped at the token budget.
func (r *ChatResponse) Truncated() bool {
	return r.FinishReason == FinishReasonLength
}

// Config contains what an adapter needs to reach one model backend.
type Config struct {
	// Name is the label used in logs and metrics (e.g. "deepseek", "xai")
	Name string

	// Type is the adapter type ("openai" or "gemini")
	Type string

	// BaseURL is the API root for OpenAI-compatible backends
	BaseURL string

	// APIKey is the authentication key
	APIKey string

	// Model is the default model identifier
	Model string

	// Temperature is the default sampling temperature
	Temperature float64

	// MaxTokens is the default completion budget
	MaxTokens int

	// Timeout bounds one Generate call
	Timeout time.Duration
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reason constants
const (
	FinishReasonStop   = "stop"
	FinishReasonLength = "length"
)
