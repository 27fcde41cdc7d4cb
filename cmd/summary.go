package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/etnz/apotek"
	"github.com/etnz/apotek/renderer"
	"github.com/google/subcommands"
)

// summaryCmd displays the summary of the last run.
type summaryCmd struct {
	query string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the report of the last run" }
func (*summaryCmd) Usage() string {
	return `apotek summary [-q <jsonpath>] [<summary.json>]

  Displays the report of the run saved in the summary file, by default the
  one configured as output.summary.

  With -q, prints the value selected in the summary by the jsonpath
  expression instead, for instance:

    apotek summary -q '$.outliers'
    apotek summary -q '$.importances[0].feature'
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "jsonpath expression to select in the summary")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, cfg, err := loadConfig(ctx, f, nil)
	if err != nil {
		return fail("Error loading configuration", err)
	}
	path := cfg.Output.Summary
	if f.NArg() > 0 {
		path = f.Arg(0)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fail("Error reading summary", err)
	}

	if c.query != "" {
		v, err := apotek.QuerySummary(bytes.NewReader(data), c.query)
		if err != nil {
			return fail("Error querying summary", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fail("Error printing value", err)
		}
		return subcommands.ExitSuccess
	}

	s, err := apotek.DecodeSummary(bytes.NewReader(data))
	if err != nil {
		return fail("Error reading summary", err)
	}
	printMarkdown(renderer.RenderReport(s))
	return subcommands.ExitSuccess
}
