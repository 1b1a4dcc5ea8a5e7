// Package providerfactory builds a providers.Generator from configuration.
package providerfactory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rreusch2/fluxstreams/pkg/config"
	"github.com/rreusch2/fluxstreams/pkg/providers"
	"github.com/rreusch2/fluxstreams/pkg/providers/gemini"
	"github.com/rreusch2/fluxstreams/pkg/providers/openai"
)

// NewGenerator creates the adapter selected by cfg.Type.
//
// Supported types:
//   - "openai": any OpenAI-compatible chat completions API (DeepSeek, xAI Grok, OpenAI)
//   - "gemini": Google Gemini through the genai SDK
//
// When Type is empty it is inferred from Name.
func NewGenerator(ctx context.Context, cfg providers.Config) (providers.Generator, error) {
	providerType := strings.ToLower(strings.TrimSpace(cfg.Type))
	if providerType == "" {
		providerType = inferProviderType(cfg.Name)
		cfg.Type = providerType
	}

	slog.Debug("creating generator",
		"name", cfg.Name,
		"type", providerType,
		"base_url", cfg.BaseURL,
		"model", cfg.Model,
	)

	var (
		gen providers.Generator
		err error
	)
	switch providerType {
	case config.ProviderTypeOpenAI:
		gen, err = openai.NewClient(cfg)
	case config.ProviderTypeGemini:
		gen, err = gemini.NewClient(ctx, cfg)
	default:
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: openai, gemini)", providerType),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", cfg.Name, err)
	}

	return gen, nil
}

// FromConfig converts the file-level provider section into adapter settings.
func FromConfig(pc config.ProviderConfig) providers.Config {
	return providers.Config{
		Name:        pc.Name,
		Type:        pc.Type,
		BaseURL:     pc.BaseURL,
		APIKey:      pc.APIKey,
		Model:       pc.Model,
		Temperature: pc.Temperature,
		MaxTokens:   pc.MaxTokens,
		Timeout:     pc.Timeout,
	}
}

func inferProviderType(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini", "google":
		return config.ProviderTypeGemini
	case "deepseek", "xai", "grok", "openai", "openrouter":
		return config.ProviderTypeOpenAI
	default:
		// Most hosted models speak the chat completions dialect.
		return config.ProviderTypeOpenAI
	}
}
