package enrich

import (
	"log/slog"
	"path/filepath"
	"strings"
)

const cleanedSuffix = "_cleaned"

// CleanStats describes one cleaned file.
type CleanStats struct {
	File     string
	Output   string
	Original int
	Final    int
	Removed  int
}

// CleanSummary totals a folder run.
type CleanSummary struct {
	Files    []CleanStats
	Original int
	Final    int
	Removed  int
}

// RetentionRate is the share of rows kept, in percent.
func (s CleanSummary) RetentionRate() float64 {
	if s.Original == 0 {
		return 0
	}
	return float64(s.Final) / float64(s.Original) * 100
}

// Cleaner removes rows without an email address.
type Cleaner struct {
	emailColumn string
	logger      *slog.Logger
}

// NewCleaner creates a cleaner keyed on emailColumn.
func NewCleaner(emailColumn string, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{emailColumn: emailColumn, logger: logger.With("component", "enrich.cleaner")}
}

// CleanFile writes the rows of input with a non-blank email to output. An
// empty output means <stem>_cleaned.csv next to the input.
func (c *Cleaner) CleanFile(input, output string) (CleanStats, error) {
	if output == "" {
		output = filepath.Join(filepath.Dir(input), stem(input)+cleanedSuffix+".csv")
	}
	stats := CleanStats{File: input, Output: output}

	t, err := ReadTable(input)
	if err != nil {
		return stats, err
	}
	if err := t.Require(input, c.emailColumn); err != nil {
		return stats, err
	}
	col := t.Column(c.emailColumn)

	kept := t.Rows[:0:0]
	for _, row := range t.Rows {
		if !blank(row[col]) {
			kept = append(kept, row)
		}
	}
	stats.Original = len(t.Rows)
	stats.Final = len(kept)
	stats.Removed = stats.Original - stats.Final

	t.Rows = kept
	if err := t.Write(output); err != nil {
		return stats, err
	}
	c.logger.Info("cleaned file",
		"file", filepath.Base(input),
		"original_rows", stats.Original,
		"removed", stats.Removed,
		"output", output,
	)
	return stats, nil
}

// CleanDir cleans every CSV in dir that is not itself a cleaned output.
// Files that fail are logged and left out of the summary.
func (c *Cleaner) CleanDir(dir string) (CleanSummary, error) {
	var sum CleanSummary
	files, err := csvFiles(dir)
	if err != nil {
		return sum, err
	}
	for _, file := range files {
		if strings.Contains(stem(file), cleanedSuffix) {
			continue
		}
		stats, err := c.CleanFile(file, "")
		if err != nil {
			c.logger.Error("failed to clean file", "file", filepath.Base(file), "error", err)
			continue
		}
		sum.Files = append(sum.Files, stats)
		sum.Original += stats.Original
		sum.Final += stats.Final
		sum.Removed += stats.Removed
	}
	return sum, nil
}
