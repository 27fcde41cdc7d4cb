package apotek

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// minStockFields is the number of fields a stock line needs after the code:
// at least one name token, the location, the quantity and the unit.
const minStockFields = 4

// ParseStock reads a stock listing export, one product per line:
//
//	A001 PARACETAMOL 500MG GUDANG 1.250,00 STRIP
//
// Fields are assigned from the right: unit, quantity, location, and the
// remaining tokens after the code form the name. A product line too short to
// be split this way is a *LineError and stops the parse.
func ParseStock(r io.Reader) ([]Stock, error) {
	var stock []Stock
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		stripped := strings.TrimSpace(scanner.Text())
		if stripped == "" || strings.HasPrefix(stripped, "KODE") {
			continue
		}
		parts := strings.Fields(stripped)
		if !productCodeRE.MatchString(parts[0]) {
			continue
		}
		if len(parts)-1 < minStockFields {
			return nil, &LineError{
				Line:   lineno,
				Text:   stripped,
				Reason: fmt.Sprintf("stock line has %d fields after the code, want at least %d", len(parts)-1, minStockFields),
			}
		}
		n := len(parts)
		stock = append(stock, Stock{
			Code:     parts[0],
			Name:     strings.Join(parts[1:n-3], " "),
			Location: parts[n-3],
			Quantity: Q(ParseNumber(parts[n-2])),
			Unit:     parts[n-1],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stock listing: %w", err)
	}
	return stock, nil
}
