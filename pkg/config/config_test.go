package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fluxstreams.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
	}
	if !cfg.Server.CORS.Enabled {
		t.Error("expected CORS enabled by default")
	}
	if got := cfg.Server.CORS.AllowedOrigins; len(got) != 1 || got[0] != "*" {
		t.Errorf("expected allow-all origins, got %v", got)
	}
	if cfg.Provider.BaseURL != DefaultProviderBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultProviderBaseURL, cfg.Provider.BaseURL)
	}
	if cfg.Provider.Model != "deepseek-chat" || cfg.Provider.MaxTokens != 500 || cfg.Provider.Timeout != 30*time.Second {
		t.Errorf("unexpected provider defaults: %+v", cfg.Provider)
	}
	if cfg.Enrich.Provider.Model != "grok-3" || cfg.Enrich.Provider.MaxTokens != 100 || cfg.Enrich.Provider.Timeout != 45*time.Second {
		t.Errorf("unexpected enrich provider defaults: %+v", cfg.Enrich.Provider)
	}
	if cfg.Limits.Default != (RateLimit{PerMinute: 5, PerHour: 50, PerDay: 200}) {
		t.Errorf("unexpected default limits: %+v", cfg.Limits.Default)
	}
	if cfg.Limits.Routes[ChatRoute].PerMinute != 10 {
		t.Errorf("expected chat route 10/min, got %+v", cfg.Limits.Routes[ChatRoute])
	}
	if cfg.Limits.Routes[GreetingRoute].PerMinute != 30 {
		t.Errorf("expected greeting route 30/min, got %+v", cfg.Limits.Routes[GreetingRoute])
	}
	if cfg.Delivery.Timeout != 15*time.Second {
		t.Errorf("expected delivery timeout 15s, got %v", cfg.Delivery.Timeout)
	}
	if !cfg.Telemetry.Logging.RedactPII {
		t.Error("expected PII redaction enabled by default")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{ListenAddress: "0.0.0.0:9000"},
		Provider: ProviderConfig{Model: "grok-3", MaxTokens: 250},
		Limits:   LimitsConfig{Default: RateLimit{PerMinute: 1}},
	}
	ApplyDefaults(cfg)

	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("listen address overwritten: %q", cfg.Server.ListenAddress)
	}
	if cfg.Provider.Model != "grok-3" || cfg.Provider.MaxTokens != 250 {
		t.Errorf("provider values overwritten: %+v", cfg.Provider)
	}
	if cfg.Limits.Default != (RateLimit{PerMinute: 1}) {
		t.Errorf("limit overwritten: %+v", cfg.Limits.Default)
	}
}

func TestApplyDefaults_GeminiProvider(t *testing.T) {
	cfg := &Config{Provider: ProviderConfig{Type: ProviderTypeGemini}}
	ApplyDefaults(cfg)

	if cfg.Provider.BaseURL != "" {
		t.Errorf("gemini should not get an OpenAI base URL, got %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.Model != DefaultGeminiModel {
		t.Errorf("expected model %q, got %q", DefaultGeminiModel, cfg.Provider.Model)
	}
	if cfg.Provider.Name != ProviderTypeGemini {
		t.Errorf("expected name %q, got %q", ProviderTypeGemini, cfg.Provider.Name)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:8080"
  cors:
    enabled: false
provider:
  name: xai
  base_url: "https://api.x.ai/v1"
  model: grok-3
  max_tokens: 250
  timeout: 45s
delivery:
  webhook_url: "https://n8n.example.com/webhook/lead"
limits:
  routes:
    /api/chatbot:
      per_minute: 3
telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:8080" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:8080", cfg.Server.ListenAddress)
	}
	if cfg.Server.CORS.Enabled {
		t.Error("expected CORS disabled by file")
	}
	if cfg.Provider.Model != "grok-3" || cfg.Provider.Timeout != 45*time.Second {
		t.Errorf("unexpected provider: %+v", cfg.Provider)
	}
	if cfg.Provider.Temperature != DefaultProviderTemperature {
		t.Errorf("expected default temperature, got %v", cfg.Provider.Temperature)
	}
	if cfg.Limits.Routes[ChatRoute].PerMinute != 3 {
		t.Errorf("expected chat route override, got %+v", cfg.Limits.Routes)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics should stay enabled when the file does not mention them")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "server: [unterminated")
		if _, err := LoadConfig(path); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeConfig(t, `
provider:
  type: claude
telemetry:
  logging:
    level: loud
`)
		_, err := LoadConfig(path)
		if err == nil {
			t.Fatal("expected validation error")
		}
		var verr ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %T", err)
		}
		if len(verr.Errors) != 2 {
			t.Errorf("expected 2 field errors, got %d: %v", len(verr.Errors), verr.Errors)
		}
	})
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Run("legacy names fill gaps", func(t *testing.T) {
		t.Setenv("DEEPSEEK_API_KEY", "sk-deepseek")
		t.Setenv("XAI_API_KEY", "xai-key")
		t.Setenv("N8N_CHAT_LEAD_WEBHOOK_URL", "https://n8n.example.com/hook")

		cfg, err := LoadConfigWithEnvOverrides("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Provider.APIKey != "sk-deepseek" {
			t.Errorf("expected provider key from DEEPSEEK_API_KEY, got %q", cfg.Provider.APIKey)
		}
		if cfg.Enrich.Provider.APIKey != "xai-key" {
			t.Errorf("expected enrich key from XAI_API_KEY, got %q", cfg.Enrich.Provider.APIKey)
		}
		if cfg.Delivery.WebhookURL != "https://n8n.example.com/hook" {
			t.Errorf("unexpected webhook URL %q", cfg.Delivery.WebhookURL)
		}
	})

	t.Run("FLUX variables win", func(t *testing.T) {
		t.Setenv("DEEPSEEK_API_KEY", "sk-deepseek")
		t.Setenv("FLUX_PROVIDER_API_KEY", "sk-flux")
		t.Setenv("FLUX_PROVIDER_MAX_TOKENS", "120")
		t.Setenv("FLUX_PROVIDER_TEMPERATURE", "0.2")
		t.Setenv("FLUX_SERVER_LISTEN_ADDRESS", "0.0.0.0:7000")
		t.Setenv("FLUX_LIMITS_ENABLED", "false")
		t.Setenv("FLUX_DELIVERY_TIMEOUT", "5s")

		path := writeConfig(t, `
provider:
  api_key: from-file
`)
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Provider.APIKey != "sk-flux" {
			t.Errorf("expected FLUX key, got %q", cfg.Provider.APIKey)
		}
		if cfg.Provider.MaxTokens != 120 || cfg.Provider.Temperature != 0.2 {
			t.Errorf("unexpected provider overrides: %+v", cfg.Provider)
		}
		if cfg.Server.ListenAddress != "0.0.0.0:7000" {
			t.Errorf("unexpected listen address %q", cfg.Server.ListenAddress)
		}
		if cfg.Limits.Enabled {
			t.Error("expected limits disabled")
		}
		if cfg.Delivery.Timeout != 5*time.Second {
			t.Errorf("unexpected delivery timeout %v", cfg.Delivery.Timeout)
		}
	})

	t.Run("file value kept over legacy name", func(t *testing.T) {
		t.Setenv("DEEPSEEK_API_KEY", "sk-deepseek")
		path := writeConfig(t, `
provider:
  api_key: from-file
`)
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Provider.APIKey != "from-file" {
			t.Errorf("expected file key, got %q", cfg.Provider.APIKey)
		}
	})

	t.Run("invalid override rejected", func(t *testing.T) {
		t.Setenv("FLUX_DELIVERY_WEBHOOK_URL", "ftp://nowhere")
		if _, err := LoadConfigWithEnvOverrides(""); err == nil {
			t.Fatal("expected validation error")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"bad listen address", func(c *Config) { c.Server.ListenAddress = "localhost" }, "server.listen_address"},
		{"bad provider type", func(c *Config) { c.Provider.Type = "claude" }, "provider.type"},
		{"bad base url", func(c *Config) { c.Provider.BaseURL = "api.deepseek.com" }, "provider.base_url"},
		{"temperature out of range", func(c *Config) { c.Provider.Temperature = 3 }, "provider.temperature"},
		{"negative max tokens", func(c *Config) { c.Provider.MaxTokens = -1 }, "provider.max_tokens"},
		{"bad webhook", func(c *Config) { c.Delivery.WebhookURL = "not a url" }, "delivery.webhook_url"},
		{"negative limit", func(c *Config) { c.Limits.Default.PerHour = -1 }, "limits.default.per_hour"},
		{"route without slash", func(c *Config) { c.Limits.Routes["api"] = RateLimit{} }, "limits.routes"},
		{"bad log format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"bad metrics path", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
		{"bad sampler", func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, "telemetry.tracing.sampler"},
		{"sample ratio above one", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "telemetry.tracing.sample_ratio"},
		{"bad schedule", func(c *Config) { c.Enrich.Schedule = "every day" }, "enrich.schedule"},
		{"bad enrich provider", func(c *Config) { c.Enrich.Provider.Model = "" }, "enrich.provider.model"},
		{"empty redact pattern", func(c *Config) {
			c.Telemetry.Logging.RedactPatterns = []RedactPattern{{Name: "x"}}
		}, "telemetry.logging.redact_patterns[0].pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %q, got %v", tt.wantField, verr.Errors)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if single.Error() != "configuration validation failed: a: bad" {
		t.Errorf("unexpected message %q", single.Error())
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if !strings.Contains(multi.Error(), "2 errors") || !strings.Contains(multi.Error(), "b: worse") {
		t.Errorf("unexpected message %q", multi.Error())
	}
}

func resetGlobal() {
	SetConfig(nil)
	initOnce = sync.Once{}
}

func TestSingleton(t *testing.T) {
	t.Cleanup(resetGlobal)

	t.Run("initialize once", func(t *testing.T) {
		resetGlobal()
		first := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:8001\"\n")
		second := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:8002\"\n")

		if err := Initialize(first); err != nil {
			t.Fatalf("initialize failed: %v", err)
		}
		if err := Initialize(second); err != nil {
			t.Fatalf("second initialize failed: %v", err)
		}
		if got := GetConfig().Server.ListenAddress; got != "127.0.0.1:8001" {
			t.Errorf("expected first config to stick, got %q", got)
		}
	})

	t.Run("reload keeps old config on failure", func(t *testing.T) {
		resetGlobal()
		good := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:8001\"\n")
		if err := Initialize(good); err != nil {
			t.Fatalf("initialize failed: %v", err)
		}
		bad := writeConfig(t, "provider:\n  type: nope\n")
		if err := ReloadConfig(bad); err == nil {
			t.Fatal("expected reload error")
		}
		if got := GetConfig().Server.ListenAddress; got != "127.0.0.1:8001" {
			t.Errorf("config replaced despite failed reload: %q", got)
		}
	})

	t.Run("must get panics before init", func(t *testing.T) {
		resetGlobal()
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		MustGetConfig()
	})
}
