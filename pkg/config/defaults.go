package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:5000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultMaxBodyBytes    = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600

	// Chat provider defaults
	DefaultProviderType        = "openai"
	DefaultProviderName        = "deepseek"
	DefaultProviderBaseURL     = "https://api.deepseek.com/v1"
	DefaultProviderModel       = "deepseek-chat"
	DefaultProviderTemperature = 0.7
	DefaultProviderMaxTokens   = 500
	DefaultProviderTimeout     = 30 * time.Second
	DefaultGeminiModel         = "gemini-2.5-flash"

	// Assistant defaults
	DefaultGreeting     = "Hi there! I'm the AI assistant for Reusch AI Solutions. You can ask me about AI topics, our services in general, or I can help you get in touch with Reid. What's on your mind?"
	DefaultConfirmation = "Thanks! I've noted your information and Reid will be in touch."
	DefaultApology      = "Sorry, I'm having trouble connecting to my brain right now."
	DefaultInquiryType  = "AI Chat Lead"

	// Delivery defaults
	DefaultDeliveryTimeout = 15 * time.Second

	// Limits defaults
	DefaultLimitsEnabled     = true
	DefaultLimitPerMinute    = 5
	DefaultLimitPerHour      = 50
	DefaultLimitPerDay       = 200
	DefaultChatPerMinute     = 10
	DefaultGreetingPerMinute = 30

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultRedactPII        = true
	DefaultLogMaxSizeMB     = 5
	DefaultLogMaxBackups    = 5
	DefaultLogMaxAgeDays    = 14
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "fluxstreams"
	DefaultTracingSampler   = "ratio"
	DefaultTracingRatio     = 1.0
	DefaultTracingEndpoint  = "localhost:4317"
	DefaultTracingService   = "fluxstreams"
	DefaultTracingTimeout   = 10 * time.Second

	// Enrich defaults
	DefaultEnrichInputDir         = "input_data"
	DefaultEnrichOutputDir        = "output_data"
	DefaultEnrichProviderName     = "xai"
	DefaultEnrichProviderBaseURL  = "https://api.x.ai/v1"
	DefaultEnrichProviderModel    = "grok-3"
	DefaultEnrichProviderTokens   = 100
	DefaultEnrichProviderTimeout  = 45 * time.Second
	DefaultEnrichCompanyColumn    = "employment_history/0/organization_name"
	DefaultEnrichHeadlineColumn   = "headline"
	DefaultEnrichIcebreakerColumn = "icebreaker"
	DefaultEnrichFirstNameColumn  = "first_name"
	DefaultEnrichDelay            = time.Second
	DefaultEnrichCheckpointEvery  = 25
	DefaultEnrichEmailColumn      = "email"
	DefaultEnrichKeepColumns      = 8
)

// Provider types.
const (
	ProviderTypeOpenAI = "openai"
	ProviderTypeGemini = "gemini"
)

// Route paths carrying their own default rate limits.
const (
	ChatRoute     = "/api/chatbot"
	GreetingRoute = "/api/chatbot/greeting"
)

// NewDefaultConfig returns a configuration with every default applied.
// Boolean options that default to true are only representable here,
// so file loading starts from this value rather than from zero.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.CORS.Enabled = DefaultCORSEnabled
	cfg.Limits.Enabled = DefaultLimitsEnabled
	cfg.Telemetry.Logging.RedactPII = DefaultRedactPII
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
// Explicitly set values are preserved.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	// CORS defaults
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.Server.CORS.AllowedMethods) == 0 {
		cfg.Server.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.Server.CORS.AllowedHeaders) == 0 {
		cfg.Server.CORS.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Server.CORS.MaxAge == 0 {
		cfg.Server.CORS.MaxAge = DefaultCORSMaxAge
	}

	// Provider defaults
	applyProviderDefaults(&cfg.Provider, ProviderConfig{
		Type:        DefaultProviderType,
		Name:        DefaultProviderName,
		BaseURL:     DefaultProviderBaseURL,
		Model:       DefaultProviderModel,
		Temperature: DefaultProviderTemperature,
		MaxTokens:   DefaultProviderMaxTokens,
		Timeout:     DefaultProviderTimeout,
	})

	// Assistant defaults
	if cfg.Assistant.Greeting == "" {
		cfg.Assistant.Greeting = DefaultGreeting
	}
	if cfg.Assistant.Confirmation == "" {
		cfg.Assistant.Confirmation = DefaultConfirmation
	}
	if cfg.Assistant.Apology == "" {
		cfg.Assistant.Apology = DefaultApology
	}
	if cfg.Assistant.InquiryType == "" {
		cfg.Assistant.InquiryType = DefaultInquiryType
	}

	// Delivery defaults
	if cfg.Delivery.Timeout == 0 {
		cfg.Delivery.Timeout = DefaultDeliveryTimeout
	}

	// Limits defaults
	if cfg.Limits.Default.IsZero() {
		cfg.Limits.Default = RateLimit{
			PerMinute: DefaultLimitPerMinute,
			PerHour:   DefaultLimitPerHour,
			PerDay:    DefaultLimitPerDay,
		}
	}
	if cfg.Limits.Routes == nil {
		cfg.Limits.Routes = map[string]RateLimit{
			ChatRoute:     {PerMinute: DefaultChatPerMinute},
			GreetingRoute: {PerMinute: DefaultGreetingPerMinute},
		}
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.File.MaxSizeMB == 0 {
		cfg.Telemetry.Logging.File.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if cfg.Telemetry.Logging.File.MaxBackups == 0 {
		cfg.Telemetry.Logging.File.MaxBackups = DefaultLogMaxBackups
	}
	if cfg.Telemetry.Logging.File.MaxAgeDays == 0 {
		cfg.Telemetry.Logging.File.MaxAgeDays = DefaultLogMaxAgeDays
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingRatio
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}

	// Enrich defaults
	if cfg.Enrich.InputDir == "" {
		cfg.Enrich.InputDir = DefaultEnrichInputDir
	}
	if cfg.Enrich.OutputDir == "" {
		cfg.Enrich.OutputDir = DefaultEnrichOutputDir
	}
	applyProviderDefaults(&cfg.Enrich.Provider, ProviderConfig{
		Type:        DefaultProviderType,
		Name:        DefaultEnrichProviderName,
		BaseURL:     DefaultEnrichProviderBaseURL,
		Model:       DefaultEnrichProviderModel,
		Temperature: DefaultProviderTemperature,
		MaxTokens:   DefaultEnrichProviderTokens,
		Timeout:     DefaultEnrichProviderTimeout,
	})
	if cfg.Enrich.CompanyColumn == "" {
		cfg.Enrich.CompanyColumn = DefaultEnrichCompanyColumn
	}
	if cfg.Enrich.HeadlineColumn == "" {
		cfg.Enrich.HeadlineColumn = DefaultEnrichHeadlineColumn
	}
	if cfg.Enrich.IcebreakerColumn == "" {
		cfg.Enrich.IcebreakerColumn = DefaultEnrichIcebreakerColumn
	}
	if cfg.Enrich.FirstNameColumn == "" {
		cfg.Enrich.FirstNameColumn = DefaultEnrichFirstNameColumn
	}
	if cfg.Enrich.Delay == 0 {
		cfg.Enrich.Delay = DefaultEnrichDelay
	}
	if cfg.Enrich.CheckpointEvery == 0 {
		cfg.Enrich.CheckpointEvery = DefaultEnrichCheckpointEvery
	}
	if cfg.Enrich.EmailColumn == "" {
		cfg.Enrich.EmailColumn = DefaultEnrichEmailColumn
	}
	if cfg.Enrich.KeepColumns == 0 {
		cfg.Enrich.KeepColumns = DefaultEnrichKeepColumns
	}
}

func applyProviderDefaults(p *ProviderConfig, def ProviderConfig) {
	if p.Type == "" {
		p.Type = def.Type
	}
	if p.Type == ProviderTypeGemini {
		def.Name = ProviderTypeGemini
		def.Model = DefaultGeminiModel
	}
	if p.Name == "" {
		p.Name = def.Name
	}
	if p.BaseURL == "" && p.Type == ProviderTypeOpenAI {
		p.BaseURL = def.BaseURL
	}
	if p.Model == "" {
		p.Model = def.Model
	}
	if p.Temperature == 0 {
		p.Temperature = def.Temperature
	}
	if p.MaxTokens == 0 {
		p.MaxTokens = def.MaxTokens
	}
	if p.Timeout == 0 {
		p.Timeout = def.Timeout
	}
}
