package renderer

import (
	"github.com/etnz/apotek"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats numbers the way the pharmacy's exports do: 1.234,50.
var printer = message.NewPrinter(language.Indonesian)

// Number formats f with two decimals.
func Number(f float64) string { return printer.Sprintf("%.2f", f) }

// Count formats n with thousands separators.
func Count(n int) string { return printer.Sprintf("%d", n) }

// Percent formats a ratio as a percentage with one decimal.
func Percent(f float64) string { return printer.Sprintf("%.1f%%", f*100) }

// nullMoney formats an optional amount of Rupiah, "-" when undefined.
func nullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return apotek.IDR(d.Decimal).String()
}

// nullNumber formats an optional number, "-" when undefined.
func nullNumber(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return Number(d.Decimal.InexactFloat64())
}

// orDash returns s, or "-" when it is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// markdownTable renders rows under header as a markdown table.
func markdownTable(header table.Row, rows []table.Row) string {
	t := table.NewWriter()
	t.AppendHeader(header)
	t.AppendRows(rows)
	return t.RenderMarkdown()
}
