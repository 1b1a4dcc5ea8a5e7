// Fluxstreams is the backend of a lead-capturing chat assistant.
//
// It serves the chat API used by the website widget, recognizes when the
// model has collected a visitor's contact details and forwards them to an
// automation webhook. The same binary ships the prospect list tooling:
//
//	# Start the chat API
//	fluxstreams serve --config config.yaml
//
//	# Add icebreakers to every CSV in the input folder
//	fluxstreams enrich
//
//	# Drop rows without an email address
//	fluxstreams clean input_data/leads.csv
//
//	# Keep the first 8 columns of an export
//	fluxstreams extract export.csv --columns 8
//
//	# Inspect how a model reply would be parsed
//	echo "Done! [LEAD_INFO_COLLECTED] FirstName: Ann, Email: a@b.co, Message: hi" | fluxstreams parse
package main

func main() {
	Execute()
}
