package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/etnz/apotek"
	"github.com/etnz/apotek/config"
	"github.com/etnz/apotek/logger"
	"github.com/etnz/apotek/tree"
)

// The steps of the pipeline. Each step reads the outputs of the previous one
// from the configured paths when run alone, and writes its own outputs.

// cleanStep parses the raw exports and writes them as delimited tables.
func cleanStep(ctx context.Context, cfg *config.Config) ([]apotek.Transaction, []apotek.Stock, error) {
	log := logger.FromContext(ctx)

	txs, err := readLedger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse ledger: %w", err)
	}
	log.Info().Str("path", cfg.Input.Ledger).Int("transactions", len(txs)).Msg("parsed ledger")

	stock, err := readRawStock(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse stock: %w", err)
	}
	log.Info().Str("path", cfg.Input.Stock).Int("stock", len(stock)).Msg("parsed stock")

	comma := cfg.Comma()
	if err := writeFile(cfg.Output.Transactions, func(w io.Writer) error { return apotek.EncodeTransactions(w, txs, comma) }); err != nil {
		return nil, nil, err
	}
	if err := writeFile(cfg.Output.Stock, func(w io.Writer) error { return apotek.EncodeStock(w, stock, comma) }); err != nil {
		return nil, nil, err
	}
	log.Info().Str("transactions", cfg.Output.Transactions).Str("stock", cfg.Output.Stock).Msg("saved cleaned tables")
	return txs, stock, nil
}

// detectStep flags the outliers of txs.
func detectStep(ctx context.Context, cfg *config.Config, txs []apotek.Transaction) ([]bool, error) {
	method, err := apotek.ParseOutlierMethod(cfg.Outlier.Method)
	if err != nil {
		return nil, err
	}
	flags, err := apotek.DetectOutliers(txs, cfg.Outlier.Column, method, cfg.Outlier.Param())
	if err != nil {
		return nil, fmt.Errorf("failed to detect outliers: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Info().Stringer("method", method).Str("column", cfg.Outlier.Column).Float64("param", cfg.Outlier.Param()).
		Int("outliers", apotek.CountFlags(flags)).Msg("detected outliers")
	return flags, nil
}

// handleStep removes the outliers of txs that are data-entry errors, and
// writes the remaining transactions.
func handleStep(ctx context.Context, cfg *config.Config, txs []apotek.Transaction, flags []bool) ([]apotek.Classification, []apotek.Transaction, []bool, error) {
	opts := apotek.ClassifyOptions{PriceBandLow: cfg.Classify.PriceBandLow, PriceBandHigh: cfg.Classify.PriceBandHigh}
	cls, cleaned, cleanedFlags, err := apotek.HandleOutliers(txs, flags, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.FromContext(ctx)
	log.Info().Int("outliers", len(cls)).Int("errors", apotek.CountErrors(cls)).
		Int("kept", len(cleaned)).Int("outliers_after", apotek.CountFlags(cleanedFlags)).Msg("handled outliers")

	if err := writeFile(cfg.Output.Handled, func(w io.Writer) error { return apotek.EncodeTransactions(w, cleaned, cfg.Comma()) }); err != nil {
		return nil, nil, nil, err
	}
	log.Info().Str("path", cfg.Output.Handled).Msg("saved handled transactions")
	return cls, cleaned, cleanedFlags, nil
}

// trainStep trains the stock level model on txs and stock, and writes its
// predictions and feature importances.
func trainStep(ctx context.Context, cfg *config.Config, txs []apotek.Transaction, stock []apotek.Stock) (*apotek.StockModel, []apotek.Prediction, []apotek.Importance, error) {
	rows := apotek.PrepareFeatures(txs, stock)
	model, err := apotek.TrainStockModel(rows, tree.Options{MaxDepth: cfg.Tree.MaxDepth, MinSamplesSplit: cfg.Tree.MinSamplesSplit})
	if err != nil {
		return nil, nil, nil, err
	}
	preds, err := model.Predictions()
	if err != nil {
		return nil, nil, nil, err
	}
	imps := model.Importances()
	log := logger.FromContext(ctx)
	log.Info().Int("products", len(rows)).Int("depth", model.Depth()).Int("leaves", model.Leaves()).Msg("trained stock level tree")

	comma := cfg.Comma()
	if err := writeFile(cfg.Output.Predictions, func(w io.Writer) error { return apotek.EncodePredictions(w, preds, comma) }); err != nil {
		return nil, nil, nil, err
	}
	if err := writeFile(cfg.Output.Importances, func(w io.Writer) error { return apotek.EncodeImportances(w, imps, comma) }); err != nil {
		return nil, nil, nil, err
	}
	log.Info().Str("predictions", cfg.Output.Predictions).Str("importances", cfg.Output.Importances).Msg("saved model outputs")
	return model, preds, imps, nil
}
