package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It starts from the defaults, overlays the file, fills remaining zero values
// and validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. An empty path skips the file and starts
// from defaults.
//
// The loading sequence is:
// 1. Defaults
// 2. YAML file (if any)
// 3. Legacy secret variables (DEEPSEEK_API_KEY, XAI_API_KEY,
// N8N_CHAT_LEAD_WEBHOOK_URL) for fields still empty
// 4. FLUX_SECTION_FIELD variables, which always win
// 5. Validation
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefaultConfig()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyLegacyEnv(cfg)
	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyLegacyEnv reads the variable names the assistant has always been
// deployed with. They only fill gaps.
func applyLegacyEnv(cfg *Config) {
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("DEEPSEEK_API_KEY")
	}
	if cfg.Enrich.Provider.APIKey == "" {
		cfg.Enrich.Provider.APIKey = os.Getenv("XAI_API_KEY")
	}
	if cfg.Delivery.WebhookURL == "" {
		cfg.Delivery.WebhookURL = os.Getenv("N8N_CHAT_LEAD_WEBHOOK_URL")
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format FLUX_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	envString("FLUX_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("FLUX_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("FLUX_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("FLUX_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envBool("FLUX_SERVER_CORS_ENABLED", &cfg.Server.CORS.Enabled)

	applyProviderEnvOverrides("FLUX_PROVIDER_", &cfg.Provider)
	applyProviderEnvOverrides("FLUX_ENRICH_PROVIDER_", &cfg.Enrich.Provider)

	// Assistant overrides
	envString("FLUX_ASSISTANT_SYSTEM_PROMPT_FILE", &cfg.Assistant.SystemPromptFile)
	envBool("FLUX_ASSISTANT_WATCH_PROMPT", &cfg.Assistant.WatchPrompt)
	envString("FLUX_ASSISTANT_INQUIRY_TYPE", &cfg.Assistant.InquiryType)

	// Delivery overrides
	envString("FLUX_DELIVERY_WEBHOOK_URL", &cfg.Delivery.WebhookURL)
	envDuration("FLUX_DELIVERY_TIMEOUT", &cfg.Delivery.Timeout)

	// Limits overrides
	envBool("FLUX_LIMITS_ENABLED", &cfg.Limits.Enabled)

	// Telemetry overrides
	envString("FLUX_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("FLUX_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envString("FLUX_TELEMETRY_LOGGING_FILE_PATH", &cfg.Telemetry.Logging.File.Path)
	envBool("FLUX_TELEMETRY_LOGGING_REDACT_PII", &cfg.Telemetry.Logging.RedactPII)
	envBool("FLUX_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("FLUX_TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("FLUX_TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("FLUX_TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)

	// Enrich overrides
	envString("FLUX_ENRICH_INPUT_DIR", &cfg.Enrich.InputDir)
	envString("FLUX_ENRICH_OUTPUT_DIR", &cfg.Enrich.OutputDir)
	envString("FLUX_ENRICH_SCHEDULE", &cfg.Enrich.Schedule)
	envDuration("FLUX_ENRICH_DELAY", &cfg.Enrich.Delay)
}

// applyProviderEnvOverrides applies overrides for one provider block.
// Variables follow the format <prefix><FIELD>.
func applyProviderEnvOverrides(prefix string, p *ProviderConfig) {
	envString(prefix+"TYPE", &p.Type)
	envString(prefix+"NAME", &p.Name)
	envString(prefix+"BASE_URL", &p.BaseURL)
	envString(prefix+"API_KEY", &p.APIKey)
	envString(prefix+"MODEL", &p.Model)
	envDuration(prefix+"TIMEOUT", &p.Timeout)
	if val := os.Getenv(prefix + "TEMPERATURE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			p.Temperature = f
		}
	}
	if val := os.Getenv(prefix + "MAX_TOKENS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			p.MaxTokens = i
		}
	}
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
