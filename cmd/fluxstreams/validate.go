package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rreusch2/fluxstreams/pkg/cli"
	"github.com/rreusch2/fluxstreams/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration (file, then environment overrides) and report
every validation problem at once. Exits non-zero when the configuration is
invalid.

Examples:
  fluxstreams validate --config config.yaml
  FLUX_DELIVERY_WEBHOOK_URL=https://n8n.example.com/webhook/x fluxstreams validate`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				fmt.Fprintf(out, "✗ %s: %s\n", fe.Field, fe.Message)
			}
			return cli.NewConfigError("", fmt.Sprintf("%d validation error(s)", len(verr.Errors)))
		}
		return cli.NewConfigError("", err.Error())
	}

	fmt.Fprintln(out, "✓ Configuration valid")
	for _, w := range configWarnings(cfg) {
		fmt.Fprintf(out, "! %s\n", w)
	}
	for _, line := range [][2]string{
		{"Listen address", cfg.Server.ListenAddress},
		{"Chat provider", fmt.Sprintf("%s (%s)", cfg.Provider.Name, cfg.Provider.Model)},
		{"Enrich provider", fmt.Sprintf("%s (%s)", cfg.Enrich.Provider.Name, cfg.Enrich.Provider.Model)},
		{"Rate limits", fmt.Sprint(cfg.Limits.Enabled)},
		{"Tracing", fmt.Sprint(cfg.Telemetry.Tracing.Enabled)},
	} {
		fmt.Fprintf(out, "  %-16s %s\n", line[0]+":", line[1])
	}
	return nil
}

// configWarnings lists settings that are valid but leave a feature inert.
func configWarnings(cfg *config.Config) []string {
	var warnings []string
	if cfg.Provider.APIKey == "" {
		warnings = append(warnings, "provider.api_key is empty; the chat API cannot reach the model")
	}
	if cfg.Delivery.WebhookURL == "" {
		warnings = append(warnings, "delivery.webhook_url is empty; captured leads will be dropped")
	}
	if cfg.Enrich.Provider.APIKey == "" {
		warnings = append(warnings, "enrich.provider.api_key is empty; enrich will fail")
	}
	return warnings
}
