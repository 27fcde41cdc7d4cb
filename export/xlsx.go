package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/apotek"
	"github.com/etnz/apotek/logger"
	"github.com/xuri/excelize/v2"
)

// Sheets of the workbook written by XLSX, in order.
var Sheets = []string{"Summary", "Transactions", "Stock", "Outliers", "Predictions", "Importances"}

// nullFloat returns the float value of d, or an empty cell when it is undefined.
func nullFloat(valid bool, f float64) any {
	if !valid {
		return nil
	}
	return f
}

// XLSX writes run to a new Excel workbook at path, one sheet per table.
func XLSX(ctx context.Context, path string, run Run) (err error) {
	if run.Summary == nil {
		return errors.New("cannot export a run without summary")
	}
	f := excelize.NewFile()
	defer func() { err = errors.Join(err, f.Close()) }()

	if err := f.SetSheetName("Sheet1", Sheets[0]); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range Sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
	}

	s := run.Summary
	summary := [][]any{
		{"run_id", s.RunID},
		{"ledger", s.Ledger},
		{"stock", s.Stock},
		{"method", s.Method},
		{"column", s.Column},
		{"threshold", s.Threshold},
		{"transactions", s.Transactions},
		{"stock_records", s.StockRecords},
		{"outliers", s.Outliers},
		{"errors", s.Errors},
		{"cleaned", s.Cleaned},
		{"outliers_after", s.OutliersAfter},
	}

	var transactions [][]any
	for _, t := range run.Transactions {
		transactions = append(transactions, []any{
			t.Date.String(), t.ID,
			t.QtyIn.Float(), t.ValueIn.Float(), t.QtyOut.Float(), t.ValueOut.Float(),
			t.Code, t.Name, t.Unit,
		})
	}

	var stock [][]any
	for _, st := range run.Stock {
		stock = append(stock, []any{st.Code, st.Name, st.Location, st.Quantity.Float(), st.Unit})
	}

	var outliers [][]any
	for _, c := range s.Classifications {
		outliers = append(outliers, []any{
			c.Row, c.Transaction.ID, c.Transaction.Code, c.Transaction.Unit, c.TypicalUnit,
			nullFloat(c.PricePerUnit.Valid, c.PricePerUnit.Decimal.InexactFloat64()),
			nullFloat(c.MedianPricePerUnit.Valid, c.MedianPricePerUnit.Decimal.InexactFloat64()),
			nullFloat(c.PriceRatio.Valid, c.PriceRatio.Decimal.InexactFloat64()),
			c.IsError,
		})
	}

	var predictions [][]any
	for _, p := range s.Predictions {
		predictions = append(predictions, []any{
			p.Code, p.QtyIn, p.QtyOut, p.ValueIn, p.ValueOut, p.QtyStock,
			p.Label(), p.PredLabel, p.ProbLow, p.ProbHigh,
		})
	}

	var importances [][]any
	for _, imp := range s.Importances {
		importances = append(importances, []any{imp.Feature, imp.Importance})
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]any
	}{
		{"Summary", []string{"key", "value"}, summary},
		{"Transactions", apotek.TransactionColumns, transactions},
		{"Stock", apotek.StockColumns, stock},
		{"Outliers", []string{"row", "transaction_id", "code", "unit", "typical_unit", "price_per_unit", "median_price_per_unit", "price_ratio", "is_error"}, outliers},
		{"Predictions", apotek.PredictionColumns, predictions},
		{"Importances", []string{"feature", "importance"}, importances},
	}
	for _, sh := range sheets {
		if err := writeSheet(f, sh.name, sh.header, sh.rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %q: %w", path, err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("run_id", s.RunID).Str("path", path).Msg("exported run to xlsx")
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	rows = append([][]any{head}, rows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of sheet %q: %w", i+1, sheet, err)
		}
	}
	return nil
}
