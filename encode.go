package apotek

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// This file contains the codec of the cleaned tables.
//
// Tables are written as delimited text with a header row, ';' by default like
// the analyst's spreadsheets expect. Reading is lenient: the delimiter is ';'
// unless that yields a single column, in which case ',' is used, and the
// Indonesian column names of the older exports are accepted too.

// TransactionColumns is the header of a transactions table.
var TransactionColumns = []string{"date", "transaction_id", "qty_in", "value_in", "qty_out", "value_out", "code", "name", "unit"}

// StockColumns is the header of a stock table.
var StockColumns = []string{"code", "name", "location", "quantity", "unit"}

// columnAliases maps the column names of the older exports to the current ones.
var columnAliases = map[string]string{
	"tanggal":      "date",
	"no_transaksi": "transaction_id",
	"qty_msk":      "qty_in",
	"nilai_msk":    "value_in",
	"qty_klr":      "qty_out",
	"nilai_klr":    "value_out",
	"kode":         "code",
	"nama_produk":  "name",
	"lokasi":       "location",
	"qty_stok":     "quantity",
}

// EncodeTransactions writes txs as a delimited table.
func EncodeTransactions(w io.Writer, txs []Transaction, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(TransactionColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, tx := range txs {
		record := []string{
			tx.Date.String(),
			tx.ID,
			tx.QtyIn.String(),
			tx.ValueIn.Decimal().String(),
			tx.QtyOut.String(),
			tx.ValueOut.Decimal().String(),
			tx.Code,
			tx.Name,
			tx.Unit,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write transaction %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeStock writes stock as a delimited table.
func EncodeStock(w io.Writer, stock []Stock, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(StockColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, s := range stock {
		if err := cw.Write([]string{s.Code, s.Name, s.Location, s.Quantity.String(), s.Unit}); err != nil {
			return fmt.Errorf("failed to write stock %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// table is a decoded delimited table with normalized column names.
type table struct {
	index   map[string]int
	records [][]string
}

// get returns the cell of a row, or "" if the column is absent.
func (t *table) get(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) require(columns ...string) error {
	for _, c := range columns {
		if _, ok := t.index[c]; !ok {
			return &ColumnError{Column: c, Reason: "missing from the table header"}
		}
	}
	return nil
}

// readTable reads a delimited table, trying ';' then ','.
func readTable(r io.Reader) (*table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	records, err := readRecords(data, ';')
	if err != nil || (len(records) > 0 && len(records[0]) == 1) {
		records, err = readRecords(data, ',')
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("failed to read csv: no header row")
	}

	t := &table{index: make(map[string]int), records: records[1:]}
	for i, name := range records[0] {
		name = normalizeColumn(name)
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	return t, nil
}

func readRecords(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	return reader.ReadAll()
}

// normalizeColumn lower-cases a column name and replaces spaces with underscores.
func normalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// parseCell reads a number written by EncodeTransactions or a spreadsheet.
// Anything else reads as 0.
func parseCell(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// DecodeTransactions reads a transactions table. The code column is required,
// other missing columns read as empty or zero.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require("code"); err != nil {
		return nil, err
	}
	txs := make([]Transaction, 0, len(t.records))
	for _, row := range t.records {
		// An unreadable date is kept as the zero Date.
		on, _ := ParseDate(t.get(row, "date"))
		txs = append(txs, Transaction{
			Date:     on,
			ID:       t.get(row, "transaction_id"),
			QtyIn:    Q(parseCell(t.get(row, "qty_in"))),
			ValueIn:  IDR(parseCell(t.get(row, "value_in"))),
			QtyOut:   Q(parseCell(t.get(row, "qty_out"))),
			ValueOut: IDR(parseCell(t.get(row, "value_out"))),
			Code:     t.get(row, "code"),
			Name:     t.get(row, "name"),
			Unit:     t.get(row, "unit"),
		})
	}
	return txs, nil
}

// DecodeStock reads a stock table. The code and quantity columns are required.
func DecodeStock(r io.Reader) ([]Stock, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require("code", "quantity"); err != nil {
		return nil, err
	}
	stock := make([]Stock, 0, len(t.records))
	for _, row := range t.records {
		stock = append(stock, Stock{
			Code:     t.get(row, "code"),
			Name:     t.get(row, "name"),
			Location: t.get(row, "location"),
			Quantity: Q(parseCell(t.get(row, "quantity"))),
			Unit:     t.get(row, "unit"),
		})
	}
	return stock, nil
}
