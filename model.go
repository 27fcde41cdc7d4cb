package apotek

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/etnz/apotek/tree"
)

// StockModel is a stock level classifier trained on FeatureRows.
type StockModel struct {
	*tree.Classifier
	Rows []FeatureRow // training rows
}

// TrainStockModel fits a decision tree predicting the stock level of rows from
// their Features.
func TrainStockModel(rows []FeatureRow, opts tree.Options) (*StockModel, error) {
	if len(rows) == 0 {
		return nil, errors.New("no product to train on")
	}
	X := make([][]float64, len(rows))
	y := make([]int, len(rows))
	for i, r := range rows {
		X[i] = r.Features()
		y[i] = r.Label()
	}
	c, err := tree.Fit(X, y, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to train the stock level tree: %w", err)
	}
	return &StockModel{Classifier: c, Rows: rows}, nil
}

// Predictions predicts the stock level of every training row.
func (m *StockModel) Predictions() ([]Prediction, error) {
	preds := make([]Prediction, 0, len(m.Rows))
	for _, r := range m.Rows {
		proba, err := m.PredictProba(r.Features())
		if err != nil {
			return nil, fmt.Errorf("failed to predict %q: %w", r.Code, err)
		}
		label, err := m.Predict(r.Features())
		if err != nil {
			return nil, fmt.Errorf("failed to predict %q: %w", r.Code, err)
		}
		preds = append(preds, Prediction{FeatureRow: r, PredLabel: label, ProbLow: proba[0], ProbHigh: proba[1]})
	}
	return preds, nil
}

// Importances returns the feature importances, most important first.
func (m *StockModel) Importances() []Importance {
	weights := m.FeatureImportances()
	imps := make([]Importance, len(FeatureNames))
	for i, name := range FeatureNames {
		imps[i] = Importance{Feature: name, Importance: weights[i]}
	}
	SortImportances(imps)
	return imps
}

// Rules returns the text rendering of the tree.
func (m *StockModel) Rules() string {
	return m.Export(FeatureNames, StockLevels)
}

// PredictionColumns is the header of a predictions table.
var PredictionColumns = []string{"code", "qty_in", "qty_out", "value_in", "value_out", "qty_stock", "stock_high", "pred_label", "prob_low", "prob_high"}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// EncodePredictions writes preds as a delimited table.
func EncodePredictions(w io.Writer, preds []Prediction, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(PredictionColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range preds {
		record := []string{
			p.Code,
			formatFloat(p.QtyIn),
			formatFloat(p.QtyOut),
			formatFloat(p.ValueIn),
			formatFloat(p.ValueOut),
			formatFloat(p.QtyStock),
			strconv.Itoa(p.Label()),
			strconv.Itoa(p.PredLabel),
			formatFloat(p.ProbLow),
			formatFloat(p.ProbHigh),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write prediction %q: %w", p.Code, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeImportances writes imps as a delimited table.
func EncodeImportances(w io.Writer, imps []Importance, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write([]string{"feature", "importance"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, imp := range imps {
		if err := cw.Write([]string{imp.Feature, formatFloat(imp.Importance)}); err != nil {
			return fmt.Errorf("failed to write importance %q: %w", imp.Feature, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
