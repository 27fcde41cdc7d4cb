package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/apotek"
	"github.com/etnz/apotek/renderer"
	"github.com/google/subcommands"
)

type handleCmd struct {
	detectorFlags
	input      string
	output     string
	low, high  float64
	onlyErrors bool
}

func (*handleCmd) Name() string     { return "handle" }
func (*handleCmd) Synopsis() string { return "remove the outliers that are data-entry errors" }
func (*handleCmd) Usage() string {
	return `apotek handle [-i <transactions>] [-o <transactions>] [-price-band-low <r>] [-price-band-high <r>] [detector flags]

  Detects the outliers among the cleaned transactions, tells data-entry
  errors apart from legitimate bulk transactions, and saves the transactions
  without the errors.

  An outlier is an error when its unit price is outside the price band around
  its product's median unit price, or when its unit is not its product's usual
  unit.
`
}

func (c *handleCmd) SetFlags(f *flag.FlagSet) {
	c.detectorFlags.setFlags(f)
	f.StringVar(&c.input, "i", "", "Cleaned transactions table (config output.transactions)")
	f.StringVar(&c.output, "o", "", "Handled transactions table (config output.handled)")
	f.Float64Var(&c.low, "price-band-low", 0, "Lowest acceptable ratio to the median unit price (config classify.price_band_low)")
	f.Float64Var(&c.high, "price-band-high", 0, "Highest acceptable ratio to the median unit price (config classify.price_band_high)")
	f.BoolVar(&c.onlyErrors, "errors", false, "Only list the outliers that are errors")
}

func (c *handleCmd) keys() flagKeys {
	keys := c.detectorFlags.keys()
	keys["i"] = "output.transactions"
	keys["o"] = "output.handled"
	keys["price-band-low"] = "classify.price_band_low"
	keys["price-band-high"] = "classify.price_band_high"
	return keys
}

func (c *handleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cfg, err := loadConfig(ctx, f, c.keys())
	if err != nil {
		return fail("Error loading configuration", err)
	}
	txs, err := readFile(cfg.Output.Transactions, apotek.DecodeTransactions)
	if err != nil {
		return fail("Error reading transactions", err)
	}
	flags, err := detectStep(ctx, cfg, txs)
	if err != nil {
		return fail("Error detecting outliers", err)
	}
	cls, cleaned, cleanedFlags, err := handleStep(ctx, cfg, txs, flags)
	if err != nil {
		return fail("Error handling outliers", err)
	}

	shown := cls
	if c.onlyErrors {
		shown = nil
		for _, cl := range cls {
			if cl.IsError {
				shown = append(shown, cl)
			}
		}
	}
	md := fmt.Sprintf("## Outliers\n\n%s outliers before handling, %s after: %s errors removed, %s transactions saved to `%s`.\n",
		renderer.Count(apotek.CountFlags(flags)), renderer.Count(apotek.CountFlags(cleanedFlags)),
		renderer.Count(apotek.CountErrors(cls)), renderer.Count(len(cleaned)), cfg.Output.Handled)
	if len(shown) > 0 {
		md += "\n" + renderer.ClassificationsMarkdown(shown) + "\n"
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
