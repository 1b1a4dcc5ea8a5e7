package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rreusch2/fluxstreams/pkg/cli"
	"github.com/rreusch2/fluxstreams/pkg/config"
	"github.com/rreusch2/fluxstreams/pkg/conversation"
	"github.com/rreusch2/fluxstreams/pkg/delivery"
	"github.com/rreusch2/fluxstreams/pkg/enrich"
	"github.com/rreusch2/fluxstreams/pkg/limits"
	"github.com/rreusch2/fluxstreams/pkg/prompt"
	"github.com/rreusch2/fluxstreams/pkg/providerfactory"
	"github.com/rreusch2/fluxstreams/pkg/providers"
	"github.com/rreusch2/fluxstreams/pkg/server"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/health"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/metrics"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/tracing"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat API server",
	Long: `Start the chat API server.

Routes:
  POST /api/chatbot           one conversation turn
  GET  /api/chatbot/greeting  opening message for the widget
  GET  /api/health            liveness
  GET  /api/ready             readiness (provider and webhook checks)
  GET  /api/version           build information
  GET  /metrics               Prometheus metrics (when enabled)

When enrich.schedule is set, scheduled icebreaker enrichment runs
alongside the server.

Examples:
  # Start with defaults and environment variables
  fluxstreams serve

  # Start with a config file and a different address
  fluxstreams serve --config /etc/fluxstreams/config.yaml --listen 0.0.0.0:8080

  # Validate config without starting the server
  fluxstreams serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}

	logger, closer, err := newLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer closer.Close()

	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("serve", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.Tracing.Timeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	source, err := prompt.Load(cfg.Assistant.SystemPromptFile, logger)
	if err != nil {
		return cli.NewConfigError("assistant.system_prompt_file", err.Error())
	}
	if fs, ok := source.(*prompt.FileSource); ok && cfg.Assistant.WatchPrompt {
		go func() {
			if err := fs.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("system prompt watcher stopped", "error", err)
			}
		}()
	}

	gen, err := providerfactory.NewGenerator(ctx, providerfactory.FromConfig(cfg.Provider))
	if err != nil {
		return cli.NewConfigError("provider", err.Error())
	}

	webhook := delivery.NewWebhook(delivery.Config{
		URL:     cfg.Delivery.WebhookURL,
		Timeout: cfg.Delivery.Timeout,
	}, delivery.WithLogger(logger))
	if !webhook.Configured() {
		logger.Warn("lead webhook URL not configured; captured leads will be logged and dropped")
	}

	turns, err := conversation.NewHandler(conversation.Config{
		Prompt:       source,
		Generator:    gen,
		Deliverer:    webhook,
		Confirmation: cfg.Assistant.Confirmation,
		InquiryType:  cfg.Assistant.InquiryType,
		Logger:       logger,
		Metrics:      collector,
		Tracer:       tracer.Tracer(),
	})
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	checker := health.New(0)
	checker.RegisterCheck("provider", providerCheck(gen))
	checker.RegisterCheck("webhook", func(context.Context) error {
		if !webhook.Configured() {
			return delivery.ErrNotConfigured
		}
		return nil
	})

	if cfg.Enrich.Schedule != "" {
		if err := startScheduledEnrichment(ctx, cfg, collector, logger); err != nil {
			return err
		}
	}

	srv, err := server.New(cfg, server.Deps{
		Turns:     turns,
		Limiter:   limits.NewManager(cfg.Limits),
		Metrics:   collector,
		Tracer:    tracer,
		Health:    checker,
		Logger:    logger,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	printBanner(cmd, cfg, gen)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Server stopped")
	return nil
}

// providerCheck fails readiness once the generator has crossed its
// consecutive failure threshold.
func providerCheck(gen providers.Generator) health.CheckFunc {
	return func(context.Context) error {
		h := gen.Health()
		if h.IsHealthy {
			return nil
		}
		return fmt.Errorf("%s: %d consecutive failures: %s", gen.Name(), h.ConsecutiveFailures, h.LastError)
	}
}

func startScheduledEnrichment(ctx context.Context, cfg *config.Config, rec enrich.Recorder, logger *slog.Logger) error {
	enricher, err := newEnricher(ctx, cfg, enrichOptions(cfg), rec, logger)
	if err != nil {
		return err
	}
	sched, err := enrich.NewScheduler(cfg.Enrich.Schedule, func(ctx context.Context) error {
		_, err := enricher.Run(ctx)
		return err
	}, logger)
	if err != nil {
		return cli.NewConfigError("enrich.schedule", err.Error())
	}
	return sched.Start(ctx)
}

func printBanner(cmd *cobra.Command, cfg *config.Config, gen providers.Generator) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Fluxstreams v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(out, "✓ Configuration loaded from %s\n", cfgFile)
	}
	fmt.Fprintf(out, "✓ Provider: %s (%s)\n", gen.Name(), cfg.Provider.Model)
	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")
}
