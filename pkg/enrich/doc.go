// Package enrich prepares prospect CSV batches for outreach.
//
// Three tools share the same table handling:
//
//   - Enricher asks a model for a one-sentence icebreaker per prospect and
//     fills the icebreaker column, leaving existing values untouched.
//     Output goes to <stem>_with_icebreakers.csv, with periodic progress
//     checkpoints for long batches.
//   - Cleaner drops rows without an email address and writes
//     <stem>_cleaned.csv next to the input.
//   - ExtractColumns keeps the first N columns and writes <stem>_first<N>.csv.
//
// Scheduler re-runs any of them on a cron schedule.
//
// Files are read whole. Batches are a few thousand rows at most, and the
// enricher needs random access to write checkpoints of the full table.
package enrich
