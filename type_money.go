package apotek

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency of every monetary value in the exports.
const Currency = "IDR"

// Money represents a monetary value in Rupiah.
type Money struct {
	value decimal.Decimal // as major unit value
}

// IDR creates money from a value in Rupiah.
func IDR[T float64 | int | int64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, Currency).Currency()
}

// String returns the string representation of the money value, "Rp1.234,50" style.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) Add(n Money) Money        { return Money{value: m.value.Add(n.value)} }
func (m Money) Decimal() decimal.Decimal { return m.value }

// Float returns the amount as a float64, for statistics only.
func (m Money) Float() float64 { return m.value.InexactFloat64() }

// Div returns the unit price for n units, and false when n is zero.
func (m Money) Div(n Quantity) (Money, bool) {
	if n.IsZero() {
		return Money{}, false
	}
	return Money{value: m.value.Div(n.value)}, true
}

func (m Money) MarshalJSON() ([]byte, error) {
	return m.value.MarshalJSON()
}
func (m *Money) UnmarshalJSON(decimalBytes []byte) error {
	return m.value.UnmarshalJSON(decimalBytes)
}
