package apotek

import (
	"slices"

	"github.com/shopspring/decimal"
)

// FeatureNames are the columns of a FeatureRow used to train the stock level
// classifier, in the order Features returns them.
var FeatureNames = []string{"qty_in", "qty_out", "value_in", "value_out"}

// StockLevels are the class names of the stock level classifier.
var StockLevels = []string{"Low", "High"}

// FeatureRow aggregates the transactions of a product, joined with its stock.
type FeatureRow struct {
	Code      string  `json:"code"`
	QtyIn     float64 `json:"qty_in"`
	QtyOut    float64 `json:"qty_out"`
	ValueIn   float64 `json:"value_in"`
	ValueOut  float64 `json:"value_out"`
	QtyStock  float64 `json:"qty_stock"`
	StockHigh bool    `json:"stock_high"`
}

// Features returns the training features of the row, in FeatureNames order.
func (r FeatureRow) Features() []float64 {
	return []float64{r.QtyIn, r.QtyOut, r.ValueIn, r.ValueOut}
}

// Label returns 1 for a High stock, 0 for a Low one.
func (r FeatureRow) Label() int {
	if r.StockHigh {
		return 1
	}
	return 0
}

// PrepareFeatures sums quantities and values per product code, joins each
// product with its stock records, and labels the stock High when it is
// strictly above the median stock of all rows.
//
// Rows are ordered by code. Transactions without a code are left out. A
// product listed several times in stock yields one row per stock record, a
// product missing from stock has a zero stock.
func PrepareFeatures(txs []Transaction, stock []Stock) []FeatureRow {
	type sums struct{ qtyIn, qtyOut, valueIn, valueOut decimal.Decimal }
	totals := make(map[string]*sums)
	var codes []string
	for _, tx := range txs {
		if tx.Code == "" {
			continue
		}
		s, ok := totals[tx.Code]
		if !ok {
			s = &sums{}
			totals[tx.Code] = s
			codes = append(codes, tx.Code)
		}
		// sums are kept exact, converted once at the end.
		s.qtyIn = s.qtyIn.Add(tx.QtyIn.Decimal())
		s.qtyOut = s.qtyOut.Add(tx.QtyOut.Decimal())
		s.valueIn = s.valueIn.Add(tx.ValueIn.Decimal())
		s.valueOut = s.valueOut.Add(tx.ValueOut.Decimal())
	}
	slices.Sort(codes)

	byCode := make(map[string][]Stock)
	for _, s := range stock {
		byCode[s.Code] = append(byCode[s.Code], s)
	}

	var rows []FeatureRow
	for _, code := range codes {
		s := totals[code]
		row := FeatureRow{
			Code:     code,
			QtyIn:    s.qtyIn.InexactFloat64(),
			QtyOut:   s.qtyOut.InexactFloat64(),
			ValueIn:  s.valueIn.InexactFloat64(),
			ValueOut: s.valueOut.InexactFloat64(),
		}
		matches := byCode[code]
		if len(matches) == 0 {
			rows = append(rows, row)
			continue
		}
		for _, m := range matches {
			row.QtyStock = m.Quantity.Float()
			rows = append(rows, row)
		}
	}

	stocks := make([]float64, len(rows))
	for i, r := range rows {
		stocks[i] = r.QtyStock
	}
	median := median(stocks)
	for i := range rows {
		rows[i].StockHigh = rows[i].QtyStock > median
	}
	return rows
}

// median of values, 0 for none.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Prediction is the stock level predicted for a FeatureRow.
type Prediction struct {
	FeatureRow
	PredLabel int     `json:"pred_label"`
	ProbLow   float64 `json:"prob_low"`
	ProbHigh  float64 `json:"prob_high"`
}

// Importance is the weight of a feature in the stock level classifier.
type Importance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// SortImportances sorts importances by decreasing weight, keeping the
// feature order among equal weights.
func SortImportances(imps []Importance) {
	slices.SortStableFunc(imps, func(a, b Importance) int {
		switch {
		case a.Importance > b.Importance:
			return -1
		case a.Importance < b.Importance:
			return 1
		}
		return 0
	})
}
