package renderer

import (
	"strings"
	"testing"

	"github.com/etnz/apotek"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// outline is the structure of a markdown document.
type outline struct {
	headings []string
	tables   []int // number of body rows of each table
	code     []string
}

func parseOutline(t *testing.T, md string) outline {
	t.Helper()
	source := []byte(md)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(source))

	var o outline
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			o.headings = append(o.headings, string(n.Lines().Value(source)))
		case *east.Table:
			rows := 0
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if _, ok := c.(*east.TableRow); ok {
					rows++
				}
			}
			o.tables = append(o.tables, rows)
		case *ast.FencedCodeBlock:
			o.code = append(o.code, string(n.Lines().Value(source)))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("failed to walk markdown: %v", err)
	}
	return o
}

func equal[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sampleSummary() *apotek.Summary {
	tx := apotek.Transaction{
		Date:     apotek.NewDate(2023, 2, 1),
		ID:       "TRX2",
		QtyOut:   apotek.Q(100),
		ValueOut: apotek.IDR(5000000),
		Code:     "A001",
		Name:     "Paracetamol",
		Unit:     "BTL",
	}
	return &apotek.Summary{
		RunID:         "run-1",
		Ledger:        "pembelian.tsv",
		Stock:         "stok.tsv",
		Method:        "zscore",
		Column:        "qty_out",
		Threshold:     3,
		Transactions:  1234,
		StockRecords:  2,
		Outliers:      2,
		Errors:        1,
		Cleaned:       1233,
		OutliersAfter: 1,
		Classifications: []apotek.Classification{
			{Row: 4, Transaction: tx, PricePerUnit: decimal.NewNullDecimal(decimal.NewFromInt(50000)), MedianPricePerUnit: decimal.NewNullDecimal(decimal.NewFromInt(10000)), PriceRatio: decimal.NewNullDecimal(decimal.NewFromInt(5)), TypicalUnit: "BTL", IsError: true},
			{Row: 9, Transaction: tx, TypicalUnit: "BTL"},
		},
		Predictions: []apotek.Prediction{
			{FeatureRow: apotek.FeatureRow{Code: "A001", QtyOut: 10, QtyStock: 5}, PredLabel: 0, ProbLow: 1},
			{FeatureRow: apotek.FeatureRow{Code: "A002", QtyOut: 90, QtyStock: 50, StockHigh: true}, PredLabel: 1, ProbHigh: 1},
		},
		Importances: []apotek.Importance{{Feature: "qty_out", Importance: 1}, {Feature: "qty_in", Importance: 0}},
		Rules:       "|--- qty_out <= 50.00\n|   |--- class: Low\n|--- qty_out >  50.00\n|   |--- class: High\n",
	}
}

func TestRenderReport(t *testing.T) {
	md := RenderReport(sampleSummary())
	o := parseOutline(t, md)

	wantHeadings := []string{"Inventory Cleaning Report", "Outliers", "Stock Level Model", "Feature Importances", "Predictions", "Rules"}
	if !equal(o.headings, wantHeadings) {
		t.Errorf("headings = %q, want %q", o.headings, wantHeadings)
	}
	// pipeline, classifications, importances, predictions
	wantTables := []int{6, 2, 2, 2}
	if !equal(o.tables, wantTables) {
		t.Errorf("table rows = %v, want %v\n%s", o.tables, wantTables, md)
	}
	if len(o.code) != 1 || !strings.Contains(o.code[0], "class: High") {
		t.Errorf("rules block = %q, want the tree rules", o.code)
	}
	for _, want := range []string{"run-1", "1.234", "50,0%", "error", "bulk"} {
		if !strings.Contains(md, want) {
			t.Errorf("report does not contain %q:\n%s", want, md)
		}
	}
}

func TestRenderReport_NoModel(t *testing.T) {
	s := sampleSummary()
	s.Classifications, s.Predictions, s.Importances, s.Rules = nil, nil, nil, ""
	s.Outliers, s.Errors, s.OutliersAfter = 0, 0, 0

	md := RenderReport(s)
	o := parseOutline(t, md)

	wantHeadings := []string{"Inventory Cleaning Report", "Outliers", "Stock Level Model"}
	if !equal(o.headings, wantHeadings) {
		t.Errorf("headings = %q, want %q", o.headings, wantHeadings)
	}
	if len(o.tables) != 1 {
		t.Errorf("got %d tables, want only the pipeline one", len(o.tables))
	}
	if !strings.Contains(md, "No product was available") {
		t.Errorf("report does not explain the missing model:\n%s", md)
	}
	if strings.Contains(md, "data-entry errors") {
		t.Errorf("report describes errors without outliers:\n%s", md)
	}
}

func TestClassificationsMarkdown(t *testing.T) {
	s := sampleSummary()
	md := ClassificationsMarkdown(s.Classifications)
	o := parseOutline(t, md)
	if !equal(o.tables, []int{2}) {
		t.Fatalf("table rows = %v, want [2]\n%s", o.tables, md)
	}
	// The bulk row has no unit price.
	lines := strings.Split(strings.TrimSpace(md), "\n")
	last := lines[len(lines)-1]
	if !strings.Contains(last, "| - |") || !strings.Contains(last, "bulk") {
		t.Errorf("bulk row = %q, want undefined prices as -", last)
	}
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{Number(1234.5), "1.234,50"},
		{Count(12345), "12.345"},
		{Percent(0.5), "50,0%"},
		{orDash(""), "-"},
		{nullNumber(decimal.NullDecimal{}), "-"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTransactionsMarkdown(t *testing.T) {
	txs := []apotek.Transaction{
		{ID: "TRX1", Code: "A001", QtyOut: apotek.Q(1)},
		{ID: "TRX2", Code: "A001", QtyOut: apotek.Q(500)},
		{ID: "TRX3", QtyOut: apotek.Q(2)},
	}

	md := TransactionsMarkdown(txs, []bool{false, true, false})
	if o := parseOutline(t, md); !equal(o.tables, []int{1}) {
		t.Errorf("TransactionsMarkdown() tables = %v, want [1]:\n%s", o.tables, md)
	}
	if !strings.Contains(md, "TRX2") || strings.Contains(md, "TRX1") {
		t.Errorf("TransactionsMarkdown() =\n%s\nwant only TRX2", md)
	}

	md = TransactionsMarkdown(txs, nil)
	if o := parseOutline(t, md); !equal(o.tables, []int{3}) {
		t.Errorf("TransactionsMarkdown(nil) tables = %v, want [3]:\n%s", o.tables, md)
	}
}
