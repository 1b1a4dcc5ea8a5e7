// Package providers defines the model backend abstraction shared by the chat
// assistant and the icebreaker enricher.
//
// Adapters live in subpackages:
//
//   - providers/openai: any OpenAI-compatible chat completions API
//     (DeepSeek, xAI Grok, OpenAI) through github.com/openai/openai-go
//   - providers/gemini: Google Gemini through google.golang.org/genai
//
// Use providerfactory.NewGenerator to build one from configuration.
//
// # Error Handling
//
// Adapters translate upstream failures into typed errors so callers can
// branch with errors.As:
//
//   - AuthError: 401/403
//   - RateLimitError: 429, with RetryAfter when the header is present
//   - TimeoutError: the per-call deadline expired
//   - EmptyResponseError: no choices or blank content
//   - ProviderError: anything else, carrying the status code
//   - ConfigError: the adapter could not be built
//
// # Health
//
// Every adapter keeps a HealthTracker. After UnhealthyThreshold consecutive
// failures the provider reports unhealthy until the next success.
package providers
