package apotek

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEncodeTransactions(t *testing.T) {
	txs := []Transaction{
		{Date: NewDate(2023, time.February, 1), ID: "TRX1", QtyIn: Q(1.5), ValueIn: IDR(2500), Code: "A001", Name: "PARACETAMOL 500MG", Unit: "STRIP"},
		{ID: "TRX2", QtyOut: Q(3), ValueOut: IDR(7500.5)},
	}
	var b bytes.Buffer
	if err := EncodeTransactions(&b, txs, ';'); err != nil {
		t.Fatalf("EncodeTransactions() unexpected error: %v", err)
	}
	want := "date;transaction_id;qty_in;value_in;qty_out;value_out;code;name;unit\n" +
		"2023-02-01;TRX1;1.5;2500;0;0;A001;PARACETAMOL 500MG;STRIP\n" +
		";TRX2;0;0;3;7500.5;;;\n"
	if got := b.String(); got != want {
		t.Errorf("EncodeTransactions() =\n%s\nwant\n%s", got, want)
	}

	got, err := DecodeTransactions(&b)
	if err != nil {
		t.Fatalf("DecodeTransactions() unexpected error: %v", err)
	}
	if len(got) != len(txs) {
		t.Fatalf("DecodeTransactions() returned %d transactions, want %d", len(got), len(txs))
	}
	for i := range txs {
		assertTransaction(t, i, got[i], txs[i])
	}
}

func TestDecodeTransactions_Lenient(t *testing.T) {
	input := "\xef\xbb\xbfTanggal,No Transaksi,Qty Klr,Nilai Klr,Kode,Extra\n" +
		"2023-02-01 00:00:00,TRX1,3,7500,A001,x\n" +
		"not a date,TRX2,abc,,A002\n"
	got, err := DecodeTransactions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeTransactions() unexpected error: %v", err)
	}
	want := []Transaction{
		{Date: NewDate(2023, time.February, 1), ID: "TRX1", QtyOut: Q(3), ValueOut: IDR(7500), Code: "A001"},
		{ID: "TRX2", Code: "A002"},
	}
	if len(got) != len(want) {
		t.Fatalf("DecodeTransactions() returned %d transactions, want %d", len(got), len(want))
	}
	for i := range want {
		assertTransaction(t, i, got[i], want[i])
	}
}

func TestDecodeTransactions_MissingCode(t *testing.T) {
	_, err := DecodeTransactions(strings.NewReader("date;qty_out\n2023-02-01;3\n"))
	var cerr *ColumnError
	if !errors.As(err, &cerr) || cerr.Column != "code" {
		t.Errorf("DecodeTransactions() error = %v, want a *ColumnError on code", err)
	}

	if _, err := DecodeTransactions(strings.NewReader("")); err == nil {
		t.Error("DecodeTransactions() of an empty table succeeded, want an error")
	}
}

func TestStockCodec(t *testing.T) {
	stock := []Stock{
		{Code: "A001", Name: "PARACETAMOL 500MG", Location: "GUDANG", Quantity: Q(1250), Unit: "STRIP"},
		{Code: "A002", Name: "OBH", Location: "RAK 1", Quantity: Q(0.5), Unit: "BTL"},
	}
	var b bytes.Buffer
	if err := EncodeStock(&b, stock, ','); err != nil {
		t.Fatalf("EncodeStock() unexpected error: %v", err)
	}
	if header, _, _ := strings.Cut(b.String(), "\n"); header != "code,name,location,quantity,unit" {
		t.Errorf("EncodeStock() header = %q", header)
	}

	got, err := DecodeStock(&b)
	if err != nil {
		t.Fatalf("DecodeStock() unexpected error: %v", err)
	}
	if len(got) != len(stock) {
		t.Fatalf("DecodeStock() returned %d records, want %d", len(got), len(stock))
	}
	for i := range stock {
		g, w := got[i], stock[i]
		if g.Code != w.Code || g.Name != w.Name || g.Location != w.Location || g.Unit != w.Unit || !g.Quantity.Equal(w.Quantity) {
			t.Errorf("stock %d = %+v, want %+v", i, g, w)
		}
	}

	_, err = DecodeStock(strings.NewReader("kode;nama_produk\nA001;X\n"))
	var cerr *ColumnError
	if !errors.As(err, &cerr) || cerr.Column != "quantity" {
		t.Errorf("DecodeStock() error = %v, want a *ColumnError on quantity", err)
	}
}
