package apotek

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	txs := []Transaction{{ID: "T0"}, {ID: "T1"}, {ID: "T2"}, {ID: "T3"}}
	flags := []bool{false, true, true, false}
	cls := []Classification{
		{Row: 1, IsError: true},
		{Row: 2, IsError: false},
	}

	cleaned, cleanedFlags, err := Resolve(txs, flags, cls)
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	var ids []string
	for _, tx := range cleaned {
		ids = append(ids, tx.ID)
	}
	if want := []string{"T0", "T2", "T3"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("Resolve() kept %v, want %v", ids, want)
	}
	if want := []bool{false, true, false}; !reflect.DeepEqual(cleanedFlags, want) {
		t.Errorf("Resolve() flags = %v, want %v", cleanedFlags, want)
	}
	if len(cleaned) != len(txs)-CountErrors(cls) {
		t.Errorf("Resolve() kept %d rows, want %d", len(cleaned), len(txs)-CountErrors(cls))
	}
}

func TestResolve_Errors(t *testing.T) {
	txs := []Transaction{{ID: "T0"}, {ID: "T1"}}
	tests := []struct {
		name  string
		flags []bool
		cls   []Classification
	}{
		{"fewer flags", []bool{true}, nil},
		{"row out of range", []bool{true, false}, []Classification{{Row: 2, IsError: true}}},
		{"negative row", []bool{true, false}, []Classification{{Row: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Resolve(txs, tt.flags, tt.cls)
			var cerr *ColumnError
			if !errors.As(err, &cerr) {
				t.Errorf("Resolve() error = %v, want a *ColumnError", err)
			}
		})
	}
}

func TestHandleOutliers(t *testing.T) {
	txs := []Transaction{
		sale("A001", "STRIP", 1, 100),
		sale("A001", "STRIP", 1, 100),
		sale("A001", "STRIP", 50, 5000), // bulk sale at the usual price
		sale("A001", "STRIP", 50, 50),   // misplaced comma
	}
	flags := []bool{false, false, true, true}

	cls, cleaned, cleanedFlags, err := HandleOutliers(txs, flags, ClassifyOptions{})
	if err != nil {
		t.Fatalf("HandleOutliers() unexpected error: %v", err)
	}
	if len(cls) != 2 || CountErrors(cls) != 1 {
		t.Fatalf("HandleOutliers() classifications = %+v, want 2 with 1 error", cls)
	}
	if len(cleaned) != 3 || len(cleanedFlags) != 3 {
		t.Fatalf("HandleOutliers() kept %d rows and %d flags, want 3", len(cleaned), len(cleanedFlags))
	}
	if CountFlags(cleanedFlags) != 1 || !cleaned[2].QtyOut.Equal(Q(50)) {
		t.Errorf("HandleOutliers() did not keep the bulk sale flagged: %v", cleanedFlags)
	}

	if _, _, _, err := HandleOutliers(txs, flags[:2], ClassifyOptions{}); err == nil {
		t.Error("HandleOutliers() with misaligned flags succeeded, want an error")
	}
}
