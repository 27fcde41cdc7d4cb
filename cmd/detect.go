package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/apotek"
	"github.com/etnz/apotek/renderer"
	"github.com/google/subcommands"
)

// detectorFlags are the outlier detector flags shared by several commands.
type detectorFlags struct {
	method    string
	column    string
	threshold float64
	iqrFactor float64
}

func (d *detectorFlags) setFlags(f *flag.FlagSet) {
	f.StringVar(&d.method, "method", "", `Outlier detection method, "zscore" or "iqr" (config outlier.method)`)
	f.StringVar(&d.column, "column", "", "Transaction column to detect outliers on (config outlier.column)")
	f.Float64Var(&d.threshold, "threshold", 0, "Z-score threshold (config outlier.threshold)")
	f.Float64Var(&d.iqrFactor, "iqr-factor", 0, "IQR factor (config outlier.iqr_factor)")
}

func (d *detectorFlags) keys() flagKeys {
	return flagKeys{
		"method":     "outlier.method",
		"column":     "outlier.column",
		"threshold":  "outlier.threshold",
		"iqr-factor": "outlier.iqr_factor",
	}
}

type detectCmd struct {
	detectorFlags
	input string
}

func (*detectCmd) Name() string     { return "detect" }
func (*detectCmd) Synopsis() string { return "list the outlier transactions" }
func (*detectCmd) Usage() string {
	return `apotek detect [-i <transactions>] [-method zscore|iqr] [-column <column>] [-threshold <z>] [-iqr-factor <k>]

  Detects the outliers among the cleaned transactions and lists them.
`
}

func (c *detectCmd) SetFlags(f *flag.FlagSet) {
	c.detectorFlags.setFlags(f)
	f.StringVar(&c.input, "i", "", "Cleaned transactions table (config output.transactions)")
}

func (c *detectCmd) keys() flagKeys {
	keys := c.detectorFlags.keys()
	keys["i"] = "output.transactions"
	return keys
}

func (c *detectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	n := apotek.CountFlags(flags)
	md := fmt.Sprintf("## Outliers\n\n%s of %s transactions are outliers of `%s` with %s.\n",
		renderer.Count(n), renderer.Count(len(txs)), cfg.Outlier.Column, cfg.Outlier.Method)
	if n > 0 {
		md += "\n" + renderer.TransactionsMarkdown(txs, flags) + "\n"
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
