package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/etnz/apotek"
	"google.golang.org/genai"
)

func sampleSummary() *apotek.Summary {
	return &apotek.Summary{
		RunID:         "run-1",
		Method:        "zscore",
		Column:        "qty_out",
		Threshold:     3,
		Transactions:  10,
		Outliers:      2,
		Errors:        1,
		Cleaned:       9,
		OutliersAfter: 1,
		Classifications: []apotek.Classification{
			{Row: 3, Transaction: apotek.Transaction{ID: "TRX3", Code: "A001", Unit: "BOX"}, TypicalUnit: "BTL", IsError: true},
			{Row: 7, Transaction: apotek.Transaction{ID: "TRX7", Code: "A002", Unit: "BTL"}, TypicalUnit: "BTL"},
		},
		Predictions: []apotek.Prediction{
			{FeatureRow: apotek.FeatureRow{Code: "A001", QtyStock: 5}, ProbLow: 1},
		},
		Importances: []apotek.Importance{{Feature: "qty_out", Importance: 1}},
	}
}

func call(t *testing.T, lib Library, name string, args map[string]any) *genai.FunctionResponse {
	t.Helper()
	resp := lib(context.Background(), &genai.FunctionCall{ID: "1", Name: name, Args: args})
	if resp.ID != "1" || resp.Name != name {
		t.Errorf("response to %s is %s/%s", name, resp.ID, resp.Name)
	}
	return resp
}

func TestAuditorFunctions(t *testing.T) {
	lib := NewLibrary(AuditorFunctions(sampleSummary()))

	tests := []struct {
		name     string
		function string
		args     map[string]any
		contains []string
		excludes []string
		err      string
	}{
		{name: "overview", function: "Overview", contains: []string{"# Inventory Cleaning Report", "run-1"}},
		{name: "all outliers", function: "Outliers", contains: []string{"TRX3", "TRX7"}},
		{name: "errors", function: "Outliers", args: map[string]any{"verdict": "error"}, contains: []string{"TRX3"}, excludes: []string{"TRX7"}},
		{name: "by code", function: "Outliers", args: map[string]any{"code": "a002"}, contains: []string{"TRX7"}, excludes: []string{"TRX3"}},
		{name: "none", function: "Outliers", args: map[string]any{"code": "A009"}, contains: []string{"No matching outlier."}},
		{name: "bad verdict", function: "Outliers", args: map[string]any{"verdict": "maybe"}, err: "verdict"},
		{name: "bad type", function: "Outliers", args: map[string]any{"code": 1.0}, err: "not a string"},
		{name: "product", function: "Product", args: map[string]any{"code": "A001"}, contains: []string{"A001", "qty_out"}},
		{name: "unknown product", function: "Product", args: map[string]any{"code": "A002"}, err: "not part of the stock level model"},
		{name: "missing code", function: "Product", err: "required"},
		{name: "unknown function", function: "Holdings", err: "unknown function"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, lib, tt.function, tt.args)
			if tt.err != "" {
				msg, _ := resp.Response["error"].(string)
				if !strings.Contains(msg, tt.err) {
					t.Errorf("error = %q, want it to contain %q", msg, tt.err)
				}
				return
			}
			out, ok := resp.Response["output"].(string)
			if !ok {
				t.Fatalf("no output in %v", resp.Response)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output does not contain %q:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(out, unwanted) {
					t.Errorf("output contains %q:\n%s", unwanted, out)
				}
			}
		})
	}
}

func TestNewAgent(t *testing.T) {
	auditor := NewAuditor(sampleSummary())
	a := New(&strings.Builder{}, strings.NewReader(""), auditor, NewPharmacist())

	decls := a.Facilitator.Config.Tools[0].FunctionDeclarations
	if len(decls) != 2 || decls[0].Name != "Auditor" || decls[1].Name != "Pharmacist" {
		t.Errorf("facilitator tools = %v, want the Auditor and the Pharmacist", decls)
	}
	if got := len(auditor.Config.Tools[0].FunctionDeclarations); got != 3 {
		t.Errorf("auditor has %d functions, want 3", got)
	}
}
