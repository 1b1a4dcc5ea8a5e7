package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any rule fails. All field errors are collected and returned together.
//
// API keys and the webhook URL are not required here: the CSV tools run
// without them, and a missing key surfaces when the provider is built.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateProvider("provider", &cfg.Provider)...)
	errs = append(errs, validateDelivery(&cfg.Delivery)...)
	errs = append(errs, validateLimits(&cfg.Limits)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateEnrich(&cfg.Enrich)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "listen address is required"})
	} else if !strings.Contains(cfg.ListenAddress, ":") {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: must be host:port", cfg.ListenAddress),
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "read timeout must not be negative"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "write timeout must not be negative"})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_body_bytes", Message: "max body bytes must not be negative"})
	}
	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{Field: "server.cors.max_age", Message: "max age must not be negative"})
	}

	return errs
}

func validateProvider(field string, cfg *ProviderConfig) []FieldError {
	var errs []FieldError

	switch cfg.Type {
	case ProviderTypeOpenAI:
		if cfg.BaseURL == "" {
			errs = append(errs, FieldError{Field: field + ".base_url", Message: "base URL is required for openai providers"})
		} else if err := validateHTTPURL(cfg.BaseURL); err != nil {
			errs = append(errs, FieldError{Field: field + ".base_url", Message: err.Error()})
		}
	case ProviderTypeGemini:
	default:
		errs = append(errs, FieldError{
			Field:   field + ".type",
			Message: fmt.Sprintf("invalid provider type %q: must be 'openai' or 'gemini'", cfg.Type),
		})
	}

	if cfg.Model == "" {
		errs = append(errs, FieldError{Field: field + ".model", Message: "model is required"})
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, FieldError{Field: field + ".temperature", Message: "temperature must be between 0 and 2"})
	}
	if cfg.MaxTokens <= 0 {
		errs = append(errs, FieldError{Field: field + ".max_tokens", Message: "max tokens must be positive"})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{Field: field + ".timeout", Message: "timeout must be positive"})
	}

	return errs
}

func validateDelivery(cfg *DeliveryConfig) []FieldError {
	var errs []FieldError

	if cfg.WebhookURL != "" {
		if err := validateHTTPURL(cfg.WebhookURL); err != nil {
			errs = append(errs, FieldError{Field: "delivery.webhook_url", Message: err.Error()})
		}
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{Field: "delivery.timeout", Message: "timeout must be positive"})
	}

	return errs
}

func validateLimits(cfg *LimitsConfig) []FieldError {
	var errs []FieldError

	errs = append(errs, validateRateLimit("limits.default", cfg.Default)...)
	for route, rl := range cfg.Routes {
		if !strings.HasPrefix(route, "/") {
			errs = append(errs, FieldError{
				Field:   "limits.routes",
				Message: fmt.Sprintf("route %q must start with '/'", route),
			})
		}
		errs = append(errs, validateRateLimit("limits.routes."+route, rl)...)
	}

	return errs
}

func validateRateLimit(field string, rl RateLimit) []FieldError {
	var errs []FieldError
	if rl.PerMinute < 0 {
		errs = append(errs, FieldError{Field: field + ".per_minute", Message: "must not be negative"})
	}
	if rl.PerHour < 0 {
		errs = append(errs, FieldError{Field: field + ".per_hour", Message: "must not be negative"})
	}
	if rl.PerDay < 0 {
		errs = append(errs, FieldError{Field: field + ".per_day", Message: "must not be negative"})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if p.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: "pattern is required",
			})
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/' when metrics are enabled",
		})
	}

	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "must be between 0.0 and 1.0",
		})
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}

	return errs
}

func validateEnrich(cfg *EnrichConfig) []FieldError {
	var errs []FieldError

	errs = append(errs, validateProvider("enrich.provider", &cfg.Provider)...)

	if cfg.Delay < 0 {
		errs = append(errs, FieldError{Field: "enrich.delay", Message: "delay must not be negative"})
	}
	if cfg.CheckpointEvery < 0 {
		errs = append(errs, FieldError{Field: "enrich.checkpoint_every", Message: "must not be negative"})
	}
	if cfg.KeepColumns <= 0 {
		errs = append(errs, FieldError{Field: "enrich.keep_columns", Message: "must be positive"})
	}
	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "enrich.schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Schedule, err),
			})
		}
	}

	return errs
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL %q: host is required", raw)
	}
	return nil
}
