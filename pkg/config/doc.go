// Package config provides configuration management for fluxstreams.
//
// Configuration is read from an optional YAML file, completed with defaults,
// overridden from the environment and validated before use.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfigWithEnvOverrides("fluxstreams.yaml")
//
// An empty path loads defaults plus environment only, which is how the
// assistant is usually deployed.
//
// # Environment Variable Overrides
//
// Variables follow FLUX_SECTION_FIELD, for example:
//
//   - FLUX_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - FLUX_PROVIDER_API_KEY overrides provider.api_key
//   - FLUX_ENRICH_PROVIDER_MODEL overrides enrich.provider.model
//
// The historical names DEEPSEEK_API_KEY, XAI_API_KEY and
// N8N_CHAT_LEAD_WEBHOOK_URL are honoured when the corresponding field is
// otherwise empty.
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Historical environment names (gap filling only)
//  4. FLUX_* environment overrides
//  5. Validation (all field errors reported together)
//
// # Singleton
//
// The CLI stores the loaded configuration with Initialize and reads it with
// GetConfig. Library packages receive explicit values.
package config
