package apotek

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/uuid"
)

// Summary records what a pipeline run read, found and produced.
type Summary struct {
	RunID string `json:"run_id"`

	Ledger string `json:"ledger"` // transactions input
	Stock  string `json:"stock"`  // stock input

	Method    string  `json:"method"`
	Column    string  `json:"column"`
	Threshold float64 `json:"threshold"`

	Transactions  int `json:"transactions"`
	StockRecords  int `json:"stock_records"`
	Outliers      int `json:"outliers"`       // flagged before handling
	Errors        int `json:"errors"`         // outliers classified as errors and dropped
	Cleaned       int `json:"cleaned"`        // transactions after handling
	OutliersAfter int `json:"outliers_after"` // flagged rows kept as legitimate

	Classifications []Classification `json:"classifications,omitempty"`
	Predictions     []Prediction     `json:"predictions,omitempty"`
	Importances     []Importance     `json:"importances,omitempty"`
	Rules           string           `json:"rules,omitempty"`
}

// NewSummary returns an empty Summary with a fresh run id.
func NewSummary() *Summary {
	return &Summary{RunID: uuid.NewString()}
}

// EncodeSummary writes s as indented JSON.
func EncodeSummary(w io.Writer, s *Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

// DecodeSummary reads a Summary written by EncodeSummary.
func DecodeSummary(r io.Reader) (*Summary, error) {
	var s Summary
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return &s, nil
}

// QuerySummary evaluates the jsonpath expression on the JSON summary read
// from r, like "$.outliers" or "$.importances[0].feature".
//
// A single answer is returned as is, not as a list of one answer.
func QuerySummary(r io.Reader, path string) (any, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %q: %w", path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
		jval = jlist[0]
	}
	return jval, nil
}
