package apotek

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultSaleColumnOffset is the character offset where the sale columns
// begin in the ledger export. When a transaction line carries only two
// numbers, a first number starting before this offset is a purchase,
// otherwise a sale.
//
// The value was measured on the export layout in use; if that layout changes
// two-number lines will be misread silently.
const DefaultSaleColumnOffset = 60

// headerTokens start the column header lines repeated on each page.
var headerTokens = []string{"KODE", "TANGGAL"}

var (
	// productCodeRE matches a product code: an "A" followed by digits.
	productCodeRE = regexp.MustCompile(`^A\d+`)
	// transactionRE matches "dd-mm-yy <id> <remainder>".
	transactionRE = regexp.MustCompile(`^(\d{2}-\d{2}-\d{2})\s+(\S+)\s+(.*)$`)
	// amountRE matches a number written with a decimal comma, like 1.234,50.
	amountRE = regexp.MustCompile(`\d[\d.]*,\d+`)
)

// LedgerOptions tunes the ledger parser.
type LedgerOptions struct {
	// SaleColumnOffset is DefaultSaleColumnOffset when zero.
	SaleColumnOffset int
}

func (o LedgerOptions) saleColumnOffset() int {
	if o.SaleColumnOffset <= 0 {
		return DefaultSaleColumnOffset
	}
	return o.SaleColumnOffset
}

// ParseLedger rebuilds the transactions of a purchase ledger export.
//
// The ledger interleaves product header lines ("A001 PARACETAMOL 500MG STRIP")
// with the transaction lines of that product ("01-02-23 TRX1 ... 1,00 2.500,00").
// Lines of any other kind are ignored. Only errors reading r are returned.
func ParseLedger(r io.Reader, opts LedgerOptions) ([]Transaction, error) {
	var (
		txs     []Transaction
		product ProductContext
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var tx *Transaction
		tx, product = ledgerStep(scanner.Text(), product, opts)
		if tx != nil {
			txs = append(txs, *tx)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return txs, nil
}

// ledgerStep classifies a single line given the current product, and returns
// the transaction it holds, if any, and the product for the next line.
func ledgerStep(line string, product ProductContext, opts LedgerOptions) (*Transaction, ProductContext) {
	stripped := strings.TrimSpace(line)
	if stripped == "" || isColumnHeader(stripped) {
		return nil, product
	}
	if productCodeRE.MatchString(stripped) {
		return nil, parseProductHeader(stripped)
	}
	tx, ok := parseTransactionLine(strings.TrimLeftFunc(line, unicode.IsSpace), opts.saleColumnOffset())
	if !ok {
		return nil, product
	}
	tx = product.stamp(tx)
	return &tx, product
}

func isColumnHeader(stripped string) bool {
	for _, token := range headerTokens {
		if strings.HasPrefix(stripped, token) {
			return true
		}
	}
	return false
}

// parseProductHeader splits "CODE NAME... UNIT". The last token is always the
// unit, even when it is also the name or the code.
func parseProductHeader(stripped string) ProductContext {
	parts := strings.Fields(stripped)
	p := ProductContext{Code: parts[0], Unit: parts[len(parts)-1]}
	switch {
	case len(parts) > 2:
		p.Name = strings.Join(parts[1:len(parts)-1], " ")
	case len(parts) == 2:
		p.Name = parts[1]
	}
	return p
}

// parseTransactionLine reads a left-trimmed transaction line. The product
// fields are left empty.
func parseTransactionLine(line string, saleColumnOffset int) (Transaction, bool) {
	m := transactionRE.FindStringSubmatchIndex(line)
	if m == nil {
		return Transaction{}, false
	}
	tx := Transaction{ID: line[m[4]:m[5]]}
	// An unreadable date is kept as the zero Date.
	tx.Date, _ = ParseLedgerDate(line[m[2]:m[3]])

	remainder := line[m[6]:m[7]]
	locs := amountRE.FindAllStringIndex(remainder, -1)
	nums := make([]string, len(locs))
	for i, loc := range locs {
		nums[i] = remainder[loc[0]:loc[1]]
	}

	switch len(nums) {
	case 4:
		tx.QtyIn, tx.ValueIn = Q(ParseNumber(nums[0])), IDR(ParseNumber(nums[1]))
		tx.QtyOut, tx.ValueOut = Q(ParseNumber(nums[2])), IDR(ParseNumber(nums[3]))
	case 3:
		tx.QtyIn, tx.ValueIn = Q(ParseNumber(nums[0])), IDR(ParseNumber(nums[1]))
		tx.QtyOut = Q(ParseNumber(nums[2]))
	case 2:
		// Offsets are counted in characters of the left-trimmed line.
		offset := utf8.RuneCountInString(line[:m[6]+locs[0][0]])
		if offset < saleColumnOffset {
			tx.QtyIn, tx.ValueIn = Q(ParseNumber(nums[0])), IDR(ParseNumber(nums[1]))
		} else {
			tx.QtyOut, tx.ValueOut = Q(ParseNumber(nums[0])), IDR(ParseNumber(nums[1]))
		}
	case 1:
		tx.QtyIn = Q(ParseNumber(nums[0]))
	}
	return tx, true
}
