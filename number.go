package apotek

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// notNumeric matches every character that can't be part of a number.
var notNumeric = regexp.MustCompile(`[^0-9.,-]`)

// ParseNumber converts an Indonesian formatted number ("1.234,50") into an
// exact decimal.
//
// Dots are thousands separators and the comma is the decimal separator. When
// there is no comma but several dots, every dot but the last is a thousands
// separator, so "1.234.567" reads as 1234.567.
//
// Empty or malformed input returns 0: exports are known to be inconsistent and
// a bad cell must not abort a run.
func ParseNumber(s string) decimal.Decimal {
	s = notNumeric.ReplaceAllString(strings.TrimSpace(s), "")
	if s == "" {
		return decimal.Zero
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if parts := strings.Split(s, "."); len(parts) > 2 {
		s = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
