package apotek

import "fmt"

// Resolve removes the transactions classified as errors.
//
// It returns the remaining transactions and their outlier flags: a remaining
// flagged row, a legitimate bulk transaction, stays flagged, every other row
// is not. Both results are aligned, row for row.
func Resolve(txs []Transaction, flags []bool, cls []Classification) ([]Transaction, []bool, error) {
	if len(flags) != len(txs) {
		return nil, nil, &ColumnError{Column: "outlier", Reason: fmt.Sprintf("%d flags for %d transactions", len(flags), len(txs))}
	}
	drop := make([]bool, len(txs))
	for _, c := range cls {
		if c.Row < 0 || c.Row >= len(txs) {
			return nil, nil, &ColumnError{Column: "row", Reason: fmt.Sprintf("classification row %d outside a table of %d transactions", c.Row, len(txs))}
		}
		if c.IsError {
			drop[c.Row] = true
		}
	}

	cleaned := make([]Transaction, 0, len(txs))
	cleanedFlags := make([]bool, 0, len(txs))
	for i, tx := range txs {
		if drop[i] {
			continue
		}
		cleaned = append(cleaned, tx)
		cleanedFlags = append(cleanedFlags, flags[i])
	}
	return cleaned, cleanedFlags, nil
}

// HandleOutliers classifies the flagged rows of txs and resolves them.
func HandleOutliers(txs []Transaction, flags []bool, opts ClassifyOptions) (cls []Classification, cleaned []Transaction, cleanedFlags []bool, err error) {
	cls, err = Classify(txs, flags, opts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to classify outliers: %w", err)
	}
	cleaned, cleanedFlags, err = Resolve(txs, flags, cls)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to resolve outliers: %w", err)
	}
	return cls, cleaned, cleanedFlags, nil
}
