package apotek

import (
	"slices"

	"github.com/shopspring/decimal"
)

// productStats holds the per product statistics the classifier compares
// outliers against.
type productStats struct {
	prices map[string][]decimal.Decimal // defined unit prices, by code
	units  map[string][]unitCount       // units in first-seen order, by code
}

type unitCount struct {
	unit  string
	count int
}

func newProductStats(txs []Transaction) *productStats {
	s := &productStats{
		prices: make(map[string][]decimal.Decimal),
		units:  make(map[string][]unitCount),
	}
	for _, tx := range txs {
		if tx.Code == "" {
			continue
		}
		if ppu, ok := tx.ValueOut.Div(tx.QtyOut); ok {
			s.prices[tx.Code] = append(s.prices[tx.Code], ppu.Decimal())
		}
		if tx.Unit != "" {
			s.units[tx.Code] = countUnit(s.units[tx.Code], tx.Unit)
		}
	}
	return s
}

func countUnit(counts []unitCount, unit string) []unitCount {
	for i := range counts {
		if counts[i].unit == unit {
			counts[i].count++
			return counts
		}
	}
	return append(counts, unitCount{unit: unit, count: 1})
}

// medianPrice returns the median unit price of a product.
func (s *productStats) medianPrice(code string) decimal.NullDecimal {
	prices := slices.Clone(s.prices[code])
	if len(prices) == 0 {
		return decimal.NullDecimal{}
	}
	slices.SortFunc(prices, func(a, b decimal.Decimal) int { return a.Cmp(b) })
	mid := len(prices) / 2
	if len(prices)%2 == 1 {
		return decimal.NewNullDecimal(prices[mid])
	}
	return decimal.NewNullDecimal(prices[mid-1].Add(prices[mid]).Div(decimal.NewFromInt(2)))
}

// typicalUnit returns the most frequent unit of a product. Among equally
// frequent units the first seen wins.
func (s *productStats) typicalUnit(code string) string {
	best := unitCount{}
	for _, c := range s.units[code] {
		if c.count > best.count {
			best = c
		}
	}
	return best.unit
}
