package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rreusch2/fluxstreams/pkg/cli"
	"github.com/rreusch2/fluxstreams/pkg/enrich"
)

var cleanFlags struct {
	emailColumn string
	format      string
}

var cleanCmd = &cobra.Command{
	Use:   "clean [file.csv ...]",
	Short: "Drop prospects without an email address",
	Long: `Remove rows whose email cell is empty and write <name>_cleaned.csv next
to each input. Without arguments every CSV in enrich.input_dir is cleaned,
skipping files that are already cleaned outputs.

Examples:
  fluxstreams clean
  fluxstreams clean input_data/leads.csv --format json`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVar(&cleanFlags.emailColumn, "email-column", "", "override enrich.email_column")
	cleanCmd.Flags().StringVar(&cleanFlags.format, "format", "text", "summary format: text, json, csv")
}

func runClean(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(cleanFlags.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	column := cfg.Enrich.EmailColumn
	if cleanFlags.emailColumn != "" {
		column = cleanFlags.emailColumn
	}
	cleaner := enrich.NewCleaner(column, logger)

	var sum enrich.CleanSummary
	if len(args) == 0 {
		sum, err = cleaner.CleanDir(cfg.Enrich.InputDir)
		if err != nil {
			return cli.NewCommandError("clean", err)
		}
	} else {
		for _, file := range args {
			stats, err := cleaner.CleanFile(file, "")
			if err != nil {
				return cli.NewCommandError("clean", err)
			}
			sum.Files = append(sum.Files, stats)
			sum.Original += stats.Original
			sum.Final += stats.Final
			sum.Removed += stats.Removed
		}
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), cleanReport(sum))
}

type cleanReport enrich.CleanSummary

func (r cleanReport) CSVHeader() []string {
	return []string{"file", "output", "original", "final", "removed"}
}

func (r cleanReport) CSVRows() [][]string {
	rows := make([][]string, 0, len(r.Files))
	for _, f := range r.Files {
		rows = append(rows, []string{f.File, f.Output, strconv.Itoa(f.Original), strconv.Itoa(f.Final), strconv.Itoa(f.Removed)})
	}
	return rows
}

func (r cleanReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Files processed: %d\n", len(r.Files))
	fmt.Fprintf(&b, "Total original rows: %d\n", r.Original)
	fmt.Fprintf(&b, "Total final rows: %d\n", r.Final)
	fmt.Fprintf(&b, "Total removed: %d\n", r.Removed)
	fmt.Fprintf(&b, "Retention rate: %.1f%%", enrich.CleanSummary(r).RetentionRate())
	for _, f := range r.Files {
		fmt.Fprintf(&b, "\n  • %s", filepath.Base(f.Output))
	}
	return b.String()
}
