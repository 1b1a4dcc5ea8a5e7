/*
Package cli holds helpers shared by the fluxstreams commands.

Output Formatting:

Command summaries can be printed as text, JSON or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, summary); err != nil {
		return err
	}

CSV output needs a value implementing Tabular.

Progress Reporting:

The enrich command reports rows processed per file:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(total))
	progress.Update(int64(done))
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
	// ctx is cancelled on SIGINT or SIGTERM
*/
package cli
