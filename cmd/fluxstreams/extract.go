package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rreusch2/fluxstreams/pkg/cli"
	"github.com/rreusch2/fluxstreams/pkg/config"
	"github.com/rreusch2/fluxstreams/pkg/enrich"
)

var extractFlags struct {
	columns int
	output  string
}

var extractCmd = &cobra.Command{
	Use:   "extract <file.csv>",
	Short: "Keep only the first N columns of a CSV",
	Long: `Write the first N columns of a CSV export to <name>_first<N>.csv next to
the input, or to --output.

Example:
  fluxstreams extract apollo_export.csv --columns 8`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().IntVarP(&extractFlags.columns, "columns", "n", config.DefaultEnrichKeepColumns, "number of leading columns to keep")
	extractCmd.Flags().StringVarP(&extractFlags.output, "output", "o", "", "output file")
}

func runExtract(cmd *cobra.Command, args []string) error {
	columns := extractFlags.columns
	if !cmd.Flags().Changed("columns") {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		columns = cfg.Enrich.KeepColumns
	}

	stats, err := enrich.ExtractColumns(args[0], extractFlags.output, columns)
	if err != nil {
		return cli.NewCommandError("extract", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Extracted columns: %s\n", strings.Join(stats.Columns, ", "))
	fmt.Fprintf(out, "✓ Saved %d rows to %s\n", stats.Rows, stats.Output)
	return nil
}
