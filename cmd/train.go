package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/apotek"
	"github.com/etnz/apotek/renderer"
	"github.com/google/subcommands"
)

type trainCmd struct {
	transactions    string
	stock           string
	maxDepth        int
	minSamplesSplit int
	rules           bool
}

func (*trainCmd) Name() string     { return "train" }
func (*trainCmd) Synopsis() string { return "train the stock level decision tree" }
func (*trainCmd) Usage() string {
	return `apotek train [-i <transactions>] [-stock <stock>] [-max-depth <n>] [-min-samples-split <n>] [-rules]

  Aggregates the handled transactions per product, joins them with the
  cleaned stock, and trains a decision tree that tells products with a High
  stock from products with a Low one.

  Predictions and feature importances are saved as delimited tables.
`
}

func (c *trainCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.transactions, "i", "", "Handled transactions table (config output.handled)")
	f.StringVar(&c.stock, "stock", "", "Cleaned stock table (config output.stock)")
	f.IntVar(&c.maxDepth, "max-depth", 0, "Maximum depth of the tree, 0 for unlimited (config tree.max_depth)")
	f.IntVar(&c.minSamplesSplit, "min-samples-split", 0, "Minimum number of products to split a node (config tree.min_samples_split)")
	f.BoolVar(&c.rules, "rules", false, "Also print the rules of the tree")
}

func (c *trainCmd) keys() flagKeys {
	return flagKeys{
		"i":                 "output.handled",
		"stock":             "output.stock",
		"max-depth":         "tree.max_depth",
		"min-samples-split": "tree.min_samples_split",
	}
}

func (c *trainCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cfg, err := loadConfig(ctx, f, c.keys())
	if err != nil {
		return fail("Error loading configuration", err)
	}
	txs, err := readFile(cfg.Output.Handled, apotek.DecodeTransactions)
	if err != nil {
		return fail("Error reading transactions", err)
	}
	stock, err := readFile(cfg.Output.Stock, apotek.DecodeStock)
	if err != nil {
		return fail("Error reading stock", err)
	}
	model, preds, imps, err := trainStep(ctx, cfg, txs, stock)
	if err != nil {
		return fail("Error training model", err)
	}

	md := fmt.Sprintf("## Stock Level Model\n\nTrained on %s products, depth %s with %s leaves.\n\n### Feature Importances\n\n%s\n",
		renderer.Count(len(preds)), renderer.Count(model.Depth()), renderer.Count(model.Leaves()), renderer.ImportancesMarkdown(imps))
	if c.rules {
		md += "\n### Rules\n\n```text\n" + model.Rules() + "```\n"
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
