package apotek

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// assertTransaction compares transactions field by field, amounts by value.
func assertTransaction(t *testing.T, i int, got, want Transaction) {
	t.Helper()
	if got.Date != want.Date || got.ID != want.ID || got.Code != want.Code || got.Name != want.Name || got.Unit != want.Unit {
		t.Errorf("transaction %d = %s %q %q %q %q, want %s %q %q %q %q", i,
			got.Date, got.ID, got.Code, got.Name, got.Unit,
			want.Date, want.ID, want.Code, want.Name, want.Unit)
	}
	if !got.QtyIn.Equal(want.QtyIn) || !got.ValueIn.Equal(want.ValueIn) || !got.QtyOut.Equal(want.QtyOut) || !got.ValueOut.Equal(want.ValueOut) {
		t.Errorf("transaction %d amounts = in %v/%v out %v/%v, want in %v/%v out %v/%v", i,
			got.QtyIn, got.ValueIn.Decimal(), got.QtyOut, got.ValueOut.Decimal(),
			want.QtyIn, want.ValueIn.Decimal(), want.QtyOut, want.ValueOut.Decimal())
	}
}

func TestParseLedger(t *testing.T) {
	sale := fmt.Sprintf("%-60s%s", "06-02-23 TRX6", "2,00   5.000,00")
	input := strings.Join([]string{
		"LAPORAN PEMBELIAN",
		"KODE     NAMA                SATUAN",
		"TANGGAL  NO TRANSAKSI   MASUK    KELUAR",
		"01-01-23 ORPHAN 5,00 10,00",
		"A001 PARACETAMOL 500MG STRIP",
		"  01-02-23  TRX1  1,00 2,00",
		"02-02-23 TRX2 10,00 25.000,00 3,00 7.500,00",
		"03-02-23 TRX3 4,00 10.000,00 2,00",
		"04-02-23 TRX4 7,00",
		"",
		"A002 OBH",
		"05-02-23 TRX5 abc",
		"  " + sale,
		"07-02-23 TRX7 1,00 2,00 3,00 4,00 5,00",
		"A003",
		"99-99-99 TRX8 1,00",
		"Halaman 2",
	}, "\n")

	got, err := ParseLedger(strings.NewReader(input), LedgerOptions{})
	if err != nil {
		t.Fatalf("ParseLedger() unexpected error: %v", err)
	}

	d := func(day int, month time.Month) Date { return NewDate(2023, month, day) }
	want := []Transaction{
		{Date: d(1, time.January), ID: "ORPHAN", QtyIn: Q(5), ValueIn: IDR(10)},
		{Date: d(1, time.February), ID: "TRX1", QtyIn: Q(1), ValueIn: IDR(2), Code: "A001", Name: "PARACETAMOL 500MG", Unit: "STRIP"},
		{Date: d(2, time.February), ID: "TRX2", QtyIn: Q(10), ValueIn: IDR(25000), QtyOut: Q(3), ValueOut: IDR(7500), Code: "A001", Name: "PARACETAMOL 500MG", Unit: "STRIP"},
		{Date: d(3, time.February), ID: "TRX3", QtyIn: Q(4), ValueIn: IDR(10000), QtyOut: Q(2), Code: "A001", Name: "PARACETAMOL 500MG", Unit: "STRIP"},
		{Date: d(4, time.February), ID: "TRX4", QtyIn: Q(7), Code: "A001", Name: "PARACETAMOL 500MG", Unit: "STRIP"},
		{Date: d(5, time.February), ID: "TRX5", Code: "A002", Name: "OBH", Unit: "OBH"},
		{Date: d(6, time.February), ID: "TRX6", QtyOut: Q(2), ValueOut: IDR(5000), Code: "A002", Name: "OBH", Unit: "OBH"},
		{Date: d(7, time.February), ID: "TRX7", Code: "A002", Name: "OBH", Unit: "OBH"},
		{ID: "TRX8", QtyIn: Q(1), Code: "A003", Unit: "A003"},
	}
	if len(got) != len(want) {
		t.Fatalf("ParseLedger() returned %d transactions, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		assertTransaction(t, i, got[i], want[i])
	}
}

func TestParseLedger_SaleColumnOffset(t *testing.T) {
	line := "01-02-23 TRX1 1,00 2,00" // first number at offset 14
	tests := []struct {
		offset int
		sale   bool
	}{
		{offset: 0, sale: false}, // default 60
		{offset: 15, sale: false},
		{offset: 14, sale: true},
		{offset: 10, sale: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.offset), func(t *testing.T) {
			got, err := ParseLedger(strings.NewReader("A001 X BOX\n"+line), LedgerOptions{SaleColumnOffset: tt.offset})
			if err != nil {
				t.Fatalf("ParseLedger() unexpected error: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("ParseLedger() returned %d transactions, want 1", len(got))
			}
			if sale := !got[0].QtyOut.IsZero(); sale != tt.sale {
				t.Errorf("sale = %v, want %v (qty_in %v qty_out %v)", sale, tt.sale, got[0].QtyIn, got[0].QtyOut)
			}
		})
	}
}

func TestParseLedger_Empty(t *testing.T) {
	got, err := ParseLedger(strings.NewReader("KODE\n\nnothing here\n"), LedgerOptions{})
	if err != nil {
		t.Fatalf("ParseLedger() unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ParseLedger() = %v, want no transaction", got)
	}
}

func TestParseStock(t *testing.T) {
	input := `KODE NAMA LOKASI QTY SATUAN
A001 PARACETAMOL 500MG GUDANG 1.250,00 STRIP
  A002 OBH GUDANG-2 10,00 BTL

Total 2 produk
`
	got, err := ParseStock(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseStock() unexpected error: %v", err)
	}
	want := []Stock{
		{Code: "A001", Name: "PARACETAMOL 500MG", Location: "GUDANG", Quantity: Q(1250), Unit: "STRIP"},
		{Code: "A002", Name: "OBH", Location: "GUDANG-2", Quantity: Q(10), Unit: "BTL"},
	}
	if len(got) != len(want) {
		t.Fatalf("ParseStock() returned %d records, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Code != w.Code || g.Name != w.Name || g.Location != w.Location || g.Unit != w.Unit || !g.Quantity.Equal(w.Quantity) {
			t.Errorf("stock %d = %+v, want %+v", i, g, w)
		}
	}
}

func TestParseStock_ShortLine(t *testing.T) {
	input := "A001 PARACETAMOL GUDANG 10,00 BTL\nA002 GUDANG 10,00 BTL\n"
	_, err := ParseStock(strings.NewReader(input))
	var lerr *LineError
	if !errors.As(err, &lerr) {
		t.Fatalf("ParseStock() error = %v, want a *LineError", err)
	}
	if lerr.Line != 2 || lerr.Text != "A002 GUDANG 10,00 BTL" {
		t.Errorf("LineError = line %d %q, want line 2 %q", lerr.Line, lerr.Text, "A002 GUDANG 10,00 BTL")
	}
}
