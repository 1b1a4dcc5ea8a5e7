package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rreusch2/fluxstreams/pkg/providers"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/metrics"
)

// Placeholders and fallbacks written into the table.
const (
	UnknownCompany   = "Unknown Company"
	UnknownHeadline  = "Professional"
	FailedIcebreaker = "Could not generate icebreaker"
)

// Icebreaker outcomes reported to the Recorder.
const (
	StatusGenerated = "generated"
	StatusFailed    = "failed"
)

const (
	outputSuffix   = "_with_icebreakers"
	progressMarker = "_progress_"
	answerLabel    = "**Generated Icebreaker:**"
)

const promptTemplate = `You are "Flux", an expert AI sales assistant. Your task is to generate a short, casual, one-sentence icebreaker to start a professional outreach email.

**Rules:**
- The icebreaker must be a single sentence.
- It should sound natural and human, not like a robot.
- It should be based on the provided company name and headline.
- DO NOT use generic phrases like "I was impressed by," "I came across your profile," or "Hope you're having a great day."
- Be complimentary and specific where possible. If the headline is generic, focus on the company.

**Lead's Information:**
- Company Name: "%s"
- Headline: "%s"

` + answerLabel

// Recorder counts icebreaker outcomes. *metrics.Collector implements it.
type Recorder interface {
	RecordIcebreaker(status string)
}

// Options controls an enrichment run.
type Options struct {
	InputDir  string
	OutputDir string

	CompanyColumn    string
	HeadlineColumn   string
	IcebreakerColumn string

	// Delay separates consecutive model calls.
	Delay time.Duration

	// CheckpointEvery writes a progress file after this many generated
	// icebreakers. Zero disables checkpoints.
	CheckpointEvery int

	// StartRow and MaxRows bound the rows considered for generation. Rows
	// outside the window are still written to the output unchanged.
	StartRow int
	MaxRows  int

	// OnProgress, when set, is called with the number of processed rows
	// before the first call and after every row.
	OnProgress func(file string, done, total int)
}

// FileStats summarizes one enriched file.
type FileStats struct {
	File      string
	Output    string
	Rows      int
	Generated int
	Failed    int
	Existing  int

	// Skipped is set when every row in the window already had an
	// icebreaker; no output is written then.
	Skipped bool
}

// Enricher fills empty icebreaker cells with model-generated sentences.
type Enricher struct {
	gen     providers.Generator
	opts    Options
	logger  *slog.Logger
	metrics Recorder

	wait func(ctx context.Context, d time.Duration) error
}

// NewEnricher creates an enricher. A nil recorder disables metrics.
func NewEnricher(gen providers.Generator, opts Options, rec Recorder, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = (*metrics.Collector)(nil)
	}
	return &Enricher{
		gen:     gen,
		opts:    opts,
		logger:  logger.With("component", "enrich.icebreaker"),
		metrics: rec,
		wait:    sleepContext,
	}
}

// Prompt renders the model instruction for one prospect. Blank values are
// replaced with generic placeholders.
func Prompt(company, headline string) string {
	if blank(company) {
		company = UnknownCompany
	}
	if blank(headline) {
		headline = UnknownHeadline
	}
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(company), strings.TrimSpace(headline))
}

// Generate asks the model for one icebreaker. It never fails: upstream
// errors and empty replies yield FailedIcebreaker.
func (e *Enricher) Generate(ctx context.Context, company, headline string) (string, bool) {
	resp, err := e.gen.Generate(ctx, &providers.ChatRequest{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: Prompt(company, headline)}},
	})
	if err != nil {
		e.logger.Warn("icebreaker generation failed", "company", company, "error", err)
		e.metrics.RecordIcebreaker(StatusFailed)
		return FailedIcebreaker, false
	}

	text := cleanIcebreaker(resp.Content)
	if text == "" {
		e.logger.Warn("model returned an empty icebreaker", "company", company)
		e.metrics.RecordIcebreaker(StatusFailed)
		return FailedIcebreaker, false
	}
	e.metrics.RecordIcebreaker(StatusGenerated)
	return text, true
}

// cleanIcebreaker strips an echoed answer label and surrounding quotes.
func cleanIcebreaker(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, answerLabel); i >= 0 {
		s = strings.TrimSpace(s[i+len(answerLabel):])
	}
	return strings.TrimSpace(strings.Trim(s, `"“”`))
}

// OutputPath returns where the enriched copy of input is written.
func (e *Enricher) OutputPath(input string) string {
	return filepath.Join(e.opts.OutputDir, stem(input)+outputSuffix+".csv")
}

// EnrichFile processes one CSV file.
func (e *Enricher) EnrichFile(ctx context.Context, path string) (*FileStats, error) {
	logger := e.logger.With("file", filepath.Base(path))

	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(path, e.opts.HeadlineColumn, e.opts.CompanyColumn); err != nil {
		return nil, err
	}
	companyCol := t.Column(e.opts.CompanyColumn)
	headlineCol := t.Column(e.opts.HeadlineColumn)
	iceCol, created := t.EnsureColumn(e.opts.IcebreakerColumn)
	if created {
		logger.Info("created icebreaker column", "column", e.opts.IcebreakerColumn)
	}

	stats := &FileStats{File: path, Rows: len(t.Rows)}
	lo, hi := e.window(len(t.Rows))

	var pending []int
	for i := lo; i < hi; i++ {
		if blank(t.Rows[i][iceCol]) {
			pending = append(pending, i)
		} else {
			stats.Existing++
		}
	}
	if len(pending) == 0 {
		logger.Info("all leads already have icebreakers, skipping")
		stats.Skipped = true
		return stats, nil
	}
	logger.Info("generating icebreakers", "pending", len(pending), "existing", stats.Existing, "rows", len(t.Rows))

	e.progress(path, 0, len(pending))

	var checkpoints []string
	for n, i := range pending {
		if n > 0 && e.opts.Delay > 0 {
			if err := e.wait(ctx, e.opts.Delay); err != nil {
				e.checkpoint(t, path, i, &checkpoints, logger)
				return stats, err
			}
		}

		row := t.Rows[i]
		text, ok := e.Generate(ctx, row[companyCol], row[headlineCol])
		if err := ctx.Err(); err != nil {
			e.checkpoint(t, path, i, &checkpoints, logger)
			return stats, err
		}
		row[iceCol] = text
		if ok {
			stats.Generated++
		} else {
			stats.Failed++
		}
		logger.Debug("processed lead", "n", n+1, "of", len(pending), "company", row[companyCol], "ok", ok)
		e.progress(path, n+1, len(pending))

		if e.opts.CheckpointEvery > 0 && (n+1)%e.opts.CheckpointEvery == 0 && n+1 < len(pending) {
			e.checkpoint(t, path, i+1, &checkpoints, logger)
		}
	}

	stats.Output = e.OutputPath(path)
	if err := t.Write(stats.Output); err != nil {
		return stats, err
	}
	for _, cp := range checkpoints {
		_ = os.Remove(cp)
	}
	logger.Info("saved enriched data", "output", stats.Output, "generated", stats.Generated, "failed", stats.Failed)
	return stats, nil
}

func (e *Enricher) progress(file string, done, total int) {
	if e.opts.OnProgress != nil {
		e.opts.OnProgress(file, done, total)
	}
}

// window clamps StartRow and MaxRows to the table.
func (e *Enricher) window(rows int) (int, int) {
	lo := e.opts.StartRow
	if lo < 0 {
		lo = 0
	}
	if lo > rows {
		lo = rows
	}
	hi := rows
	if e.opts.MaxRows > 0 && lo+e.opts.MaxRows < hi {
		hi = lo + e.opts.MaxRows
	}
	return lo, hi
}

// checkpoint saves the table as <stem>_progress_<row>.csv in the output dir.
func (e *Enricher) checkpoint(t *Table, path string, row int, written *[]string, logger *slog.Logger) {
	out := filepath.Join(e.opts.OutputDir, fmt.Sprintf("%s%s%d.csv", stem(path), progressMarker, row))
	if err := t.Write(out); err != nil {
		logger.Error("failed to save progress", "path", out, "error", err)
		return
	}
	*written = append(*written, out)
	logger.Info("progress saved", "path", out, "row", row)
}

// Run enriches every CSV in the input folder. Files that fail are logged
// and skipped; Run returns an error only when the folder cannot be read or
// ctx is cancelled.
func (e *Enricher) Run(ctx context.Context) ([]*FileStats, error) {
	files, err := csvFiles(e.opts.InputDir)
	if err != nil {
		return nil, err
	}

	var results []*FileStats
	for _, file := range files {
		s := stem(file)
		if strings.HasSuffix(s, outputSuffix) || strings.Contains(s, progressMarker) {
			continue
		}
		stats, err := e.EnrichFile(ctx, file)
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		if err != nil {
			e.logger.Error("failed to enrich file", "file", filepath.Base(file), "error", err)
			continue
		}
		results = append(results, stats)
	}
	e.logger.Info("lead enrichment completed", "files", len(results), "output_dir", e.opts.OutputDir)
	return results, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
