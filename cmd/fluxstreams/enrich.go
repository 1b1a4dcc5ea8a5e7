package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rreusch2/fluxstreams/pkg/cli"
	"github.com/rreusch2/fluxstreams/pkg/config"
	"github.com/rreusch2/fluxstreams/pkg/enrich"
	"github.com/rreusch2/fluxstreams/pkg/providerfactory"
)

var enrichFlags struct {
	file      string
	inputDir  string
	outputDir string
	startRow  int
	maxRows   int
	schedule  string
	format    string
	quiet     bool
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Add model-generated icebreakers to prospect CSVs",
	Long: `Generate a one-sentence icebreaker for every prospect whose icebreaker
cell is empty. Each file needs a headline column and a company column (see
enrich.headline_column and enrich.company_column). Results are written to
<output-dir>/<name>_with_icebreakers.csv; existing icebreakers are kept.

Examples:
  # Every CSV in the input folder
  fluxstreams enrich

  # One file, rows 100-199 only
  fluxstreams enrich --file leads.csv --start-row 100 --max-rows 100

  # Re-run nightly at 2 AM until interrupted
  fluxstreams enrich --schedule "0 2 * * *"`,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().StringVarP(&enrichFlags.file, "file", "f", "", "enrich a single CSV file instead of the input folder")
	enrichCmd.Flags().StringVar(&enrichFlags.inputDir, "input", "", "override enrich.input_dir")
	enrichCmd.Flags().StringVar(&enrichFlags.outputDir, "output", "", "override enrich.output_dir")
	enrichCmd.Flags().IntVar(&enrichFlags.startRow, "start-row", 0, "first data row (0-based) considered for generation")
	enrichCmd.Flags().IntVar(&enrichFlags.maxRows, "max-rows", 0, "maximum rows considered for generation (0 for all)")
	enrichCmd.Flags().StringVar(&enrichFlags.schedule, "schedule", "", "cron schedule to re-run on (overrides enrich.schedule)")
	enrichCmd.Flags().StringVar(&enrichFlags.format, "format", "text", "summary format: text, json, csv")
	enrichCmd.Flags().BoolVarP(&enrichFlags.quiet, "quiet", "q", false, "no progress bar")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(enrichFlags.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if enrichFlags.inputDir != "" {
		cfg.Enrich.InputDir = enrichFlags.inputDir
	}
	if enrichFlags.outputDir != "" {
		cfg.Enrich.OutputDir = enrichFlags.outputDir
	}

	logger, closer, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	opts := enrichOptions(cfg)
	opts.StartRow = enrichFlags.startRow
	opts.MaxRows = enrichFlags.maxRows
	if !enrichFlags.quiet {
		opts.OnProgress = progressBar()
	}

	enricher, err := newEnricher(ctx, cfg, opts, nil, logger)
	if err != nil {
		return err
	}

	run := func(ctx context.Context) error {
		var results enrichReport
		if enrichFlags.file != "" {
			stats, err := enricher.EnrichFile(ctx, enrichFlags.file)
			if err != nil {
				return err
			}
			results = enrichReport{stats}
		} else {
			all, err := enricher.Run(ctx)
			if err != nil {
				return err
			}
			results = all
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), results)
	}

	schedule := cfg.Enrich.Schedule
	if enrichFlags.schedule != "" {
		schedule = enrichFlags.schedule
	}
	if schedule == "" {
		if err := run(ctx); err != nil {
			return cli.NewCommandError("enrich", err)
		}
		return nil
	}

	sched, err := enrich.NewScheduler(schedule, run, logger)
	if err != nil {
		return cli.NewConfigError("enrich.schedule", err.Error())
	}
	if err := sched.Start(ctx); err != nil {
		return cli.NewCommandError("enrich", err)
	}
	if next := sched.NextRun(); next != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Next run: %s (Ctrl+C to stop)\n", next.Format("2006-01-02 15:04:05"))
	}
	<-ctx.Done()
	sched.Stop()
	return nil
}

// enrichOptions maps the enrich config section onto enricher options.
func enrichOptions(cfg *config.Config) enrich.Options {
	return enrich.Options{
		InputDir:         cfg.Enrich.InputDir,
		OutputDir:        cfg.Enrich.OutputDir,
		CompanyColumn:    cfg.Enrich.CompanyColumn,
		HeadlineColumn:   cfg.Enrich.HeadlineColumn,
		IcebreakerColumn: cfg.Enrich.IcebreakerColumn,
		Delay:            cfg.Enrich.Delay,
		CheckpointEvery:  cfg.Enrich.CheckpointEvery,
	}
}

func newEnricher(ctx context.Context, cfg *config.Config, opts enrich.Options, rec enrich.Recorder, logger *slog.Logger) (*enrich.Enricher, error) {
	gen, err := providerfactory.NewGenerator(ctx, providerfactory.FromConfig(cfg.Enrich.Provider))
	if err != nil {
		return nil, cli.NewConfigError("enrich.provider", err.Error())
	}
	return enrich.NewEnricher(gen, opts, rec, logger), nil
}

// progressBar draws one bar per file on stderr.
func progressBar() func(file string, done, total int) {
	progress := cli.NewProgressReporter(os.Stderr).(*cli.SimpleProgress)
	return func(file string, done, total int) {
		switch {
		case done == 0:
			progress.SetLabel(filepath.Base(file))
			progress.Start(int64(total))
		case done >= total:
			progress.Finish()
		default:
			progress.Update(int64(done))
		}
	}
}

type enrichReport []*enrich.FileStats

func (r enrichReport) CSVHeader() []string {
	return []string{"file", "output", "rows", "generated", "failed", "existing", "skipped"}
}

func (r enrichReport) CSVRows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, s := range r {
		rows = append(rows, []string{
			s.File, s.Output,
			strconv.Itoa(s.Rows), strconv.Itoa(s.Generated), strconv.Itoa(s.Failed),
			strconv.Itoa(s.Existing), strconv.FormatBool(s.Skipped),
		})
	}
	return rows
}

func (r enrichReport) String() string {
	if len(r) == 0 {
		return "No files enriched"
	}
	var b strings.Builder
	for _, s := range r {
		if s.Skipped {
			fmt.Fprintf(&b, "• %s: all %d leads already have icebreakers\n", filepath.Base(s.File), s.Existing)
			continue
		}
		fmt.Fprintf(&b, "✓ %s: %d generated, %d failed, %d kept → %s\n",
			filepath.Base(s.File), s.Generated, s.Failed, s.Existing, s.Output)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
