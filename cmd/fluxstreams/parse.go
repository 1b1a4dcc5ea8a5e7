package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rreusch2/fluxstreams/pkg/cli"
	"github.com/rreusch2/fluxstreams/pkg/config"
	"github.com/rreusch2/fluxstreams/pkg/lead"
)

var parseFlags struct {
	content bool
	inquiry string
}

var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Show how a model reply's lead marker is parsed",
	Long: `Parse a full model reply (or, with --content, only the text after the
marker) and print the result as JSON: the visible reply, the parse outcome
and tier, the recovered record and the webhook payload it would produce.
Text is read from the arguments, or from stdin when none are given.

Examples:
  fluxstreams parse "Thanks! [LEAD_INFO_COLLECTED] FirstName: Ann, Email: ann@example.com, Message: Pricing"
  fluxstreams parse --content < marker.txt`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&parseFlags.content, "content", false, "input is marker content, not a full reply")
	parseCmd.Flags().StringVar(&parseFlags.inquiry, "inquiry-type", config.DefaultInquiryType, "inquiry type used in the payload")
}

// parseReport is the JSON printed by the parse command.
type parseReport struct {
	Reply      string            `json:"reply,omitempty"`
	Outcome    string            `json:"outcome"`
	Tier       string            `json:"tier"`
	Diagnostic string            `json:"diagnostic,omitempty"`
	Record     *lead.Record      `json:"record,omitempty"`
	Payload    map[string]string `json:"payload,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return cli.NewCommandError("parse", fmt.Errorf("failed to read stdin: %w", err))
		}
		text = string(data)
	}

	report := buildParseReport(text, parseFlags.content, parseFlags.inquiry)
	return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), report)
}

func buildParseReport(text string, contentOnly bool, inquiry string) parseReport {
	var (
		reply string
		res   lead.Result
	)
	if contentOnly {
		res = lead.Parse(strings.TrimSpace(text))
	} else {
		reply, res = lead.Extract(text)
	}

	report := parseReport{
		Reply:      reply,
		Outcome:    res.Outcome.String(),
		Tier:       res.Tier.String(),
		Diagnostic: res.Diagnostic,
	}
	if res.HasLead() {
		rec := res.Record
		report.Record = &rec
		report.Payload = rec.Payload(inquiry)
	}
	return report
}
