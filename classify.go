package apotek

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Default price band of the classifier: an outlier whose unit price is less
// than half or more than one and a half times its product's median unit price
// is a data-entry error.
const (
	DefaultPriceBandLow  = 0.5
	DefaultPriceBandHigh = 1.5
)

// ClassifyOptions tunes the outlier classifier. Zero fields use the defaults.
type ClassifyOptions struct {
	PriceBandLow  float64
	PriceBandHigh float64
}

func (o ClassifyOptions) band() (low, high decimal.Decimal) {
	l, h := o.PriceBandLow, o.PriceBandHigh
	if l == 0 {
		l = DefaultPriceBandLow
	}
	if h == 0 {
		h = DefaultPriceBandHigh
	}
	return decimal.NewFromFloat(l), decimal.NewFromFloat(h)
}

// Classification is the verdict on one flagged transaction.
type Classification struct {
	Row         int         `json:"row"` // index of the transaction in the classified table
	Transaction Transaction `json:"transaction"`

	// PricePerUnit is value_out / qty_out, invalid when qty_out is zero.
	PricePerUnit decimal.NullDecimal `json:"price_per_unit"`
	// MedianPricePerUnit is the median unit price of the product over the whole
	// table, invalid when the product has no unit price at all.
	MedianPricePerUnit decimal.NullDecimal `json:"median_price_per_unit"`
	// PriceRatio is PricePerUnit / MedianPricePerUnit, invalid when either is
	// or when the median is zero.
	PriceRatio decimal.NullDecimal `json:"price_ratio"`
	// TypicalUnit is the product's most frequent unit, empty when unknown.
	TypicalUnit string `json:"typical_unit"`

	IsError bool `json:"is_error"`
}

// Classify tells data-entry errors apart from legitimate bulk transactions
// among the flagged rows of txs.
//
// A flagged row is an error when its unit price is outside the price band
// around its product's median unit price, or when its unit is not the
// product's typical unit. Either signal is enough. Rows without a unit price
// (qty_out = 0) can only be condemned by their unit. Medians and typical
// units are computed over all rows of txs, not only the flagged ones.
//
// It returns one Classification per flagged row, in row order.
func Classify(txs []Transaction, flags []bool, opts ClassifyOptions) ([]Classification, error) {
	if len(flags) != len(txs) {
		return nil, &ColumnError{Column: "outlier", Reason: fmt.Sprintf("%d flags for %d transactions", len(flags), len(txs))}
	}
	low, high := opts.band()
	stats := newProductStats(txs)

	var result []Classification
	for i, tx := range txs {
		if !flags[i] {
			continue
		}
		c := Classification{Row: i, Transaction: tx}
		if ppu, ok := tx.ValueOut.Div(tx.QtyOut); ok {
			c.PricePerUnit = decimal.NewNullDecimal(ppu.Decimal())
		}
		if tx.Code != "" {
			c.MedianPricePerUnit = stats.medianPrice(tx.Code)
			c.TypicalUnit = stats.typicalUnit(tx.Code)
		}
		if c.PricePerUnit.Valid && c.MedianPricePerUnit.Valid && !c.MedianPricePerUnit.Decimal.IsZero() {
			c.PriceRatio = decimal.NewNullDecimal(c.PricePerUnit.Decimal.Div(c.MedianPricePerUnit.Decimal))
		}

		var priceError bool
		switch {
		case c.PriceRatio.Valid:
			priceError = c.PriceRatio.Decimal.LessThan(low) || c.PriceRatio.Decimal.GreaterThan(high)
		case c.PricePerUnit.Valid && c.MedianPricePerUnit.Valid:
			// Zero median: any non-zero price is infinitely far from it.
			priceError = !c.PricePerUnit.Decimal.IsZero()
		}
		// A missing unit, or a product without a usual unit, never matches.
		unitError := tx.Unit == "" || c.TypicalUnit == "" || tx.Unit != c.TypicalUnit
		c.IsError = priceError || unitError
		result = append(result, c)
	}
	return result, nil
}

// CountErrors returns the number of classifications marked as errors.
func CountErrors(cls []Classification) int {
	n := 0
	for _, c := range cls {
		if c.IsError {
			n++
		}
	}
	return n
}
