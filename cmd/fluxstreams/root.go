package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rreusch2/fluxstreams/pkg/cli"
	"github.com/rreusch2/fluxstreams/pkg/config"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fluxstreams",
	Short: "Fluxstreams - lead-capturing chat assistant backend",
	Long: `Fluxstreams serves the chat API behind the website assistant and
forwards the contact details it collects to an automation webhook.

It also prepares prospect lists for outreach:
  - enrich: add a one-sentence icebreaker per prospect
  - clean: drop rows without an email address
  - extract: keep only the first N columns of an export

Without --config, defaults and FLUX_* environment variables are used.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and environment only when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig initializes the process configuration once.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return config.GetConfig(), nil
}

// newLogger builds the configured logger writing to w and installs it as
// the slog default.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, io.Closer, error) {
	lc := cfg.Telemetry.Logging
	if verbose {
		lc.Level = "debug"
	}
	logger, closer, err := logging.New(lc, w)
	if err != nil {
		return nil, nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)
	return logger, closer, nil
}
