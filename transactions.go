package apotek

// Transaction is one purchase or sale event rebuilt from the ledger.
//
// Code, Name and Unit come from the product header the transaction line
// followed; they are empty for lines found before any header.
type Transaction struct {
	Date     Date     `json:"date"` // zero when the ledger date was unreadable
	ID       string   `json:"transaction_id"`
	QtyIn    Quantity `json:"qty_in"`
	ValueIn  Money    `json:"value_in"`
	QtyOut   Quantity `json:"qty_out"`
	ValueOut Money    `json:"value_out"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Unit     string   `json:"unit"`
}

// Stock is one line of the stock listing.
type Stock struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Quantity Quantity `json:"quantity"`
	Unit     string   `json:"unit"`
}

// ProductContext is the product introduced by the latest header line of the
// ledger. The zero value means no header has been read yet.
type ProductContext struct {
	Code string
	Name string
	Unit string
}

// stamp returns tx attributed to the product.
func (p ProductContext) stamp(tx Transaction) Transaction {
	tx.Code, tx.Name, tx.Unit = p.Code, p.Name, p.Unit
	return tx
}
