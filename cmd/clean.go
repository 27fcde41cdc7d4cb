package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type cleanCmd struct {
	ledger, stock string
	delimiter     string
	offset        int
}

func (*cleanCmd) Name() string     { return "clean" }
func (*cleanCmd) Synopsis() string { return "parse the raw ledger and stock exports into tables" }
func (*cleanCmd) Usage() string {
	return `apotek clean [-ledger <file>] [-stock <file>] [-delimiter <char>] [-sale-column-offset <n>]

  Parses the raw purchase ledger and stock listing exported by the pharmacy
  system, and saves them as delimited tables.
`
}

func (c *cleanCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "ledger", "", "Raw ledger export (config input.ledger)")
	f.StringVar(&c.stock, "stock", "", "Raw stock export (config input.stock)")
	f.StringVar(&c.delimiter, "delimiter", "", "Delimiter of the tables written (config delimiter)")
	f.IntVar(&c.offset, "sale-column-offset", 0, "Column from which a lone pair of numbers is a sale (config ledger.sale_column_offset)")
}

func (c *cleanCmd) keys() flagKeys {
	return flagKeys{
		"ledger":             "input.ledger",
		"stock":              "input.stock",
		"delimiter":          "delimiter",
		"sale-column-offset": "ledger.sale_column_offset",
	}
}

func (c *cleanCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cfg, err := loadConfig(ctx, f, c.keys())
	if err != nil {
		return fail("Error loading configuration", err)
	}
	txs, stock, err := cleanStep(ctx, cfg)
	if err != nil {
		return fail("Error cleaning exports", err)
	}
	fmt.Printf("Saved %d transactions to %s\n", len(txs), cfg.Output.Transactions)
	fmt.Printf("Saved %d stock records to %s\n", len(stock), cfg.Output.Stock)
	return subcommands.ExitSuccess
}
