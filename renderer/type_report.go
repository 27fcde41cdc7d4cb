package renderer

import (
	"strconv"

	"github.com/etnz/apotek"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Report is the view of a run summary the report templates render.
type Report struct {
	*apotek.Summary
}

// NewReport returns the report view of s.
func NewReport(s *apotek.Summary) *Report {
	return &Report{Summary: s}
}

// ErrorRate is the share of the outliers that were data-entry errors.
func (r *Report) ErrorRate() float64 {
	if r.Outliers == 0 {
		return 0
	}
	return float64(r.Errors) / float64(r.Outliers)
}

// PipelineTable lists the number of records at each step of the run.
func (r *Report) PipelineTable() string {
	return markdownTable(table.Row{"Step", "Records"}, []table.Row{
		{"Transactions parsed", Count(r.Transactions)},
		{"Stock records parsed", Count(r.StockRecords)},
		{"Outliers flagged", Count(r.Outliers)},
		{"Errors removed", Count(r.Errors)},
		{"Transactions kept", Count(r.Cleaned)},
		{"Outliers kept", Count(r.OutliersAfter)},
	})
}

func (r *Report) ClassificationTable() string { return ClassificationsMarkdown(r.Classifications) }
func (r *Report) ImportanceTable() string     { return ImportancesMarkdown(r.Importances) }
func (r *Report) PredictionTable() string     { return PredictionsMarkdown(r.Predictions) }

// ClassificationsMarkdown renders the verdict on each flagged transaction.
func ClassificationsMarkdown(cls []apotek.Classification) string {
	rows := make([]table.Row, 0, len(cls))
	for _, c := range cls {
		tx := c.Transaction
		verdict := "bulk"
		if c.IsError {
			verdict = "error"
		}
		rows = append(rows, table.Row{
			strconv.Itoa(c.Row),
			orDash(tx.Date.String()),
			tx.ID,
			orDash(tx.Code),
			orDash(tx.Name),
			Number(tx.QtyOut.Float()),
			tx.ValueOut.String(),
			orDash(tx.Unit),
			orDash(c.TypicalUnit),
			nullMoney(c.PricePerUnit),
			nullMoney(c.MedianPricePerUnit),
			nullNumber(c.PriceRatio),
			verdict,
		})
	}
	return markdownTable(table.Row{"Row", "Date", "Transaction", "Code", "Name", "Qty Out", "Value Out", "Unit", "Typical Unit", "Unit Price", "Median Unit Price", "Ratio", "Verdict"}, rows)
}

// ImportancesMarkdown renders the feature importances of the stock level model.
func ImportancesMarkdown(imps []apotek.Importance) string {
	rows := make([]table.Row, 0, len(imps))
	for _, imp := range imps {
		rows = append(rows, table.Row{imp.Feature, Percent(imp.Importance)})
	}
	return markdownTable(table.Row{"Feature", "Importance"}, rows)
}

// PredictionsMarkdown renders the predicted stock level of each product.
func PredictionsMarkdown(preds []apotek.Prediction) string {
	rows := make([]table.Row, 0, len(preds))
	for _, p := range preds {
		rows = append(rows, table.Row{
			p.Code,
			Number(p.QtyIn),
			Number(p.QtyOut),
			Number(p.ValueIn),
			Number(p.ValueOut),
			Number(p.QtyStock),
			apotek.StockLevels[p.Label()],
			apotek.StockLevels[p.PredLabel],
			Percent(p.ProbHigh),
		})
	}
	return markdownTable(table.Row{"Code", "Qty In", "Qty Out", "Value In", "Value Out", "Stock", "Level", "Predicted", "P(High)"}, rows)
}
