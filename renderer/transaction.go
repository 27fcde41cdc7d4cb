package renderer

import (
	"strconv"

	"github.com/etnz/apotek"
	"github.com/jedib0t/go-pretty/v6/table"
)

// TransactionsMarkdown renders the transactions whose flag is set, all of
// them when flags is nil, with their row number.
func TransactionsMarkdown(txs []apotek.Transaction, flags []bool) string {
	var rows []table.Row
	for i, tx := range txs {
		if flags != nil && (i >= len(flags) || !flags[i]) {
			continue
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i),
			orDash(tx.Date.String()),
			tx.ID,
			orDash(tx.Code),
			orDash(tx.Name),
			Number(tx.QtyIn.Float()),
			tx.ValueIn.String(),
			Number(tx.QtyOut.Float()),
			tx.ValueOut.String(),
			orDash(tx.Unit),
		})
	}
	return markdownTable(table.Row{"Row", "Date", "Transaction", "Code", "Name", "Qty In", "Value In", "Qty Out", "Value Out", "Unit"}, rows)
}
