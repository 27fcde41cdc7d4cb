package cmd

import (
	"context"
	"flag"
	"io"

	"github.com/etnz/apotek"
	"github.com/etnz/apotek/export"
	"github.com/etnz/apotek/logger"
	"github.com/etnz/apotek/renderer"
	"github.com/google/subcommands"
)

type runCmd struct {
	cleanCmd
	detectorFlags
	low, high       float64
	maxDepth        int
	minSamplesSplit int
	sqlite, xlsx    string
	quiet           bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run the whole pipeline, from the raw exports to the report" }
func (*runCmd) Usage() string {
	return `apotek run [-sqlite <db>] [-xlsx <workbook>] [-q] [step flags]

  Cleans the raw exports, detects and handles the outliers, trains the stock
  level model, then saves a JSON summary and a markdown report of the run.

  The run can also be appended to a SQLite database and saved as an Excel
  workbook.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	c.cleanCmd.SetFlags(f)
	c.detectorFlags.setFlags(f)
	f.Float64Var(&c.low, "price-band-low", 0, "Lowest acceptable ratio to the median unit price (config classify.price_band_low)")
	f.Float64Var(&c.high, "price-band-high", 0, "Highest acceptable ratio to the median unit price (config classify.price_band_high)")
	f.IntVar(&c.maxDepth, "max-depth", 0, "Maximum depth of the tree, 0 for unlimited (config tree.max_depth)")
	f.IntVar(&c.minSamplesSplit, "min-samples-split", 0, "Minimum number of products to split a node (config tree.min_samples_split)")
	f.StringVar(&c.sqlite, "sqlite", "", "SQLite database to append the run to (config export.sqlite)")
	f.StringVar(&c.xlsx, "xlsx", "", "Excel workbook to save the run to (config export.xlsx)")
	f.BoolVar(&c.quiet, "q", false, "Do not print the report")
}

func (c *runCmd) keys() flagKeys {
	keys := c.cleanCmd.keys()
	for k, v := range c.detectorFlags.keys() {
		keys[k] = v
	}
	keys["price-band-low"] = "classify.price_band_low"
	keys["price-band-high"] = "classify.price_band_high"
	keys["max-depth"] = "tree.max_depth"
	keys["min-samples-split"] = "tree.min_samples_split"
	keys["sqlite"] = "export.sqlite"
	keys["xlsx"] = "export.xlsx"
	return keys
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cfg, err := loadConfig(ctx, f, c.keys())
	if err != nil {
		return fail("Error loading configuration", err)
	}
	log := logger.FromContext(ctx)

	s := apotek.NewSummary()
	s.Ledger, s.Stock = cfg.Input.Ledger, cfg.Input.Stock
	s.Method, s.Column, s.Threshold = cfg.Outlier.Method, cfg.Outlier.Column, cfg.Outlier.Param()
	log.Info().Str("run", s.RunID).Msg("starting run")

	txs, stock, err := cleanStep(ctx, cfg)
	if err != nil {
		return fail("Error cleaning exports", err)
	}
	s.Transactions, s.StockRecords = len(txs), len(stock)

	flags, err := detectStep(ctx, cfg, txs)
	if err != nil {
		return fail("Error detecting outliers", err)
	}
	s.Outliers = apotek.CountFlags(flags)

	cls, cleaned, cleanedFlags, err := handleStep(ctx, cfg, txs, flags)
	if err != nil {
		return fail("Error handling outliers", err)
	}
	s.Classifications = cls
	s.Errors, s.Cleaned, s.OutliersAfter = apotek.CountErrors(cls), len(cleaned), apotek.CountFlags(cleanedFlags)

	if len(apotek.PrepareFeatures(cleaned, stock)) == 0 {
		log.Warn().Msg("no product to train the stock level model on")
	} else {
		model, preds, imps, err := trainStep(ctx, cfg, cleaned, stock)
		if err != nil {
			return fail("Error training model", err)
		}
		s.Predictions, s.Importances, s.Rules = preds, imps, model.Rules()
	}

	if err := writeFile(cfg.Output.Summary, func(w io.Writer) error { return apotek.EncodeSummary(w, s) }); err != nil {
		return fail("Error saving summary", err)
	}
	report := renderer.RenderReport(s)
	if cfg.Output.Report != "" {
		if err := writeFile(cfg.Output.Report, func(w io.Writer) error {
			_, err := io.WriteString(w, report)
			return err
		}); err != nil {
			return fail("Error saving report", err)
		}
	}
	log.Info().Str("summary", cfg.Output.Summary).Str("report", cfg.Output.Report).Msg("saved run")

	run := export.Run{Summary: s, Transactions: cleaned, Stock: stock}
	if cfg.Export.SQLite != "" {
		if err := export.SQLite(ctx, cfg.Export.SQLite, run); err != nil {
			return fail("Error exporting to SQLite", err)
		}
	}
	if cfg.Export.XLSX != "" {
		if err := export.XLSX(ctx, cfg.Export.XLSX, run); err != nil {
			return fail("Error exporting to Excel", err)
		}
	}

	if !c.quiet {
		printMarkdown(report)
	}
	return subcommands.ExitSuccess
}
