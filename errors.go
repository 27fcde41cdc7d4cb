package apotek

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMethod is returned for an outlier detection method that is
// neither "zscore" nor "iqr". It is a configuration error.
var ErrUnsupportedMethod = errors.New("unsupported outlier detection method")

// LineError reports a line of a raw export that lacks the fields its kind of
// line requires.
type LineError struct {
	Line   int    // 1-based line number
	Text   string // offending line, trimmed
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// ColumnError reports a missing or misaligned column of a table.
type ColumnError struct {
	Column string
	Reason string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q: %s", e.Column, e.Reason)
}
