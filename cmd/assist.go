package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/apotek"
	"github.com/etnz/apotek/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd reviews the outliers of a run with the AI assistant.
type assistCmd struct {
	summary string
}

func (*assistCmd) Name() string { return "assist" }

func (*assistCmd) Synopsis() string { return "review the outliers of the last run with the AI assistant" }

func (*assistCmd) Usage() string {
	return `apotek assist [-s <summary.json>] [<prompt>...]

  Starts an interactive session with the AI assistant about the run saved in
  the summary file. The arguments, if any, are the first prompt.

  The Gemini client is configured from the environment, see GOOGLE_API_KEY.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.summary, "s", "", "Summary of the run to review (config output.summary)")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cfg, err := loadConfig(ctx, f, flagKeys{"s": "output.summary"})
	if err != nil {
		return fail("Error loading configuration", err)
	}
	s, err := readFile(cfg.Output.Summary, apotek.DecodeSummary)
	if err != nil {
		return fail("Error reading summary", err)
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return fail("Error initializing Gemini's client", err)
	}

	a := agent.New(os.Stdout, os.Stdin, agent.NewAuditor(s), agent.NewPharmacist())
	a.Print = fprintMarkdown

	if err := a.Run(ctx, client, strings.Join(f.Args(), " ")); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
