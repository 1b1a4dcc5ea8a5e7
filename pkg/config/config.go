package config

import "time"

// Config is the root configuration structure for fluxstreams.
// It contains the HTTP server, the chat provider, the assistant persona,
// lead delivery, rate limits, telemetry and the offline enrichment tools.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server"`

	// Provider configures the text-generation backend used by the chat
	// assistant.
	Provider ProviderConfig `yaml:"provider"`

	// Assistant contains the persona, system prompt source and the fixed
	// sentences the assistant falls back to.
	Assistant AssistantConfig `yaml:"assistant"`

	// Delivery configures where captured leads are sent.
	Delivery DeliveryConfig `yaml:"delivery"`

	// Limits contains per-client rate limiting configuration.
	Limits LimitsConfig `yaml:"limits"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Enrich configures the offline CSV tooling (icebreakers, cleaning,
	// column extraction).
	Enrich EnrichConfig `yaml:"enrich"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Default: "127.0.0.1:5000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed the provider timeout.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the size of a chat request body.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains Cross-Origin Resource Sharing configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins. "*" allows every origin.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// ProviderConfig configures an OpenAI-compatible or Gemini chat backend.
type ProviderConfig struct {
	// Type selects the client implementation.
	// Options: "openai" (any OpenAI-compatible API, e.g. DeepSeek or xAI),
	// "gemini"
	// Default: "openai"
	Type string `yaml:"type"`

	// Name is a label used in logs and metrics.
	// Default: "deepseek"
	Name string `yaml:"name"`

	// BaseURL is the API root. Ignored for gemini.
	// Default: "https://api.deepseek.com/v1"
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates with the provider. Usually supplied via
	// environment (FLUX_PROVIDER_API_KEY or DEEPSEEK_API_KEY).
	APIKey string `yaml:"api_key"`

	// Model is the model identifier.
	// Default: "deepseek-chat"
	Model string `yaml:"model"`

	// Temperature is the sampling temperature.
	// Default: 0.7
	Temperature float64 `yaml:"temperature"`

	// MaxTokens bounds the completion length.
	// Default: 500
	MaxTokens int `yaml:"max_tokens"`

	// Timeout bounds a single generation call.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// AssistantConfig configures the chat persona.
type AssistantConfig struct {
	// SystemPromptFile overrides the built-in system prompt. Empty uses the
	// embedded default.
	SystemPromptFile string `yaml:"system_prompt_file"`

	// WatchPrompt reloads SystemPromptFile when it changes on disk.
	// Default: false
	WatchPrompt bool `yaml:"watch_prompt"`

	// Greeting is returned by the greeting endpoint.
	Greeting string `yaml:"greeting"`

	// Confirmation replaces a blank reply preceding the lead marker.
	Confirmation string `yaml:"confirmation"`

	// Apology is shown to the user when generation fails.
	Apology string `yaml:"apology"`

	// InquiryType labels delivered leads.
	// Default: "AI Chat Lead"
	InquiryType string `yaml:"inquiry_type"`
}

// DeliveryConfig configures the lead webhook.
type DeliveryConfig struct {
	// WebhookURL is the n8n (or compatible) endpoint leads are POSTed to.
	// Empty disables delivery; captured leads are logged and dropped.
	WebhookURL string `yaml:"webhook_url"`

	// Timeout bounds a single delivery attempt.
	// Default: 15s
	Timeout time.Duration `yaml:"timeout"`
}

// LimitsConfig configures per-client request rate limits.
type LimitsConfig struct {
	// Enabled toggles rate limiting.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Default applies to every route without its own entry.
	// Default: 5/min, 50/hour, 200/day
	Default RateLimit `yaml:"default"`

	// Routes holds per-route overrides keyed by request path.
	// Default: /api/chatbot 10/min, /api/chatbot/greeting 30/min
	Routes map[string]RateLimit `yaml:"routes"`
}

// RateLimit expresses allowed requests per window. Zero disables a window.
type RateLimit struct {
	PerMinute int `yaml:"per_minute"`
	PerHour   int `yaml:"per_hour"`
	PerDay    int `yaml:"per_day"`
}

// IsZero reports whether no window is limited.
func (r RateLimit) IsZero() bool {
	return r.PerMinute == 0 && r.PerHour == 0 && r.PerDay == 0
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`

	// RedactPII masks emails, phone numbers, API keys and bearer tokens.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains additional redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`

	// File, when Path is set, also writes logs to a rotating file.
	File LogFileConfig `yaml:"file"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// LogFileConfig configures the rotating log file.
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled exposes metrics on Path.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the scrape endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "fluxstreams"
	Namespace string `yaml:"namespace"`
}

// TracingConfig configures OpenTelemetry span export.
type TracingConfig struct {
	// Enabled turns on span export. Disabled tracing uses a noop tracer.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler selects the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of new traces to sample when Sampler is
	// "ratio". Traces started upstream follow the caller's decision.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure"`

	// ServiceName is reported as service.name.
	// Default: "fluxstreams"
	ServiceName string `yaml:"service_name"`

	// Timeout bounds each export call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// EnrichConfig configures the CSV tooling.
type EnrichConfig struct {
	// InputDir is scanned for *.csv batches.
	// Default: "input_data"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives processed files.
	// Default: "output_data"
	OutputDir string `yaml:"output_dir"`

	// Provider configures the model used for icebreakers.
	// Default: xAI grok-3, 100 tokens, 45s timeout
	Provider ProviderConfig `yaml:"provider"`

	// CompanyColumn and HeadlineColumn are required input columns.
	CompanyColumn  string `yaml:"company_column"`
	HeadlineColumn string `yaml:"headline_column"`

	// IcebreakerColumn is created when missing. Only empty cells are filled.
	// Default: "icebreaker"
	IcebreakerColumn string `yaml:"icebreaker_column"`

	// FirstNameColumn, when present in a row, prefixes the icebreaker.
	// Default: "first_name"
	FirstNameColumn string `yaml:"first_name_column"`

	// Delay is the pause between model calls.
	// Default: 1s
	Delay time.Duration `yaml:"delay"`

	// CheckpointEvery writes a progress file after that many generated rows.
	// Zero disables checkpoints.
	// Default: 25
	CheckpointEvery int `yaml:"checkpoint_every"`

	// Schedule, when set, re-runs enrichment on a cron schedule.
	Schedule string `yaml:"schedule"`

	// EmailColumn is the column the cleaner requires to be non-empty.
	// Default: "email"
	EmailColumn string `yaml:"email_column"`

	// KeepColumns is how many leading columns the extractor keeps.
	// Default: 8
	KeepColumns int `yaml:"keep_columns"`
}
