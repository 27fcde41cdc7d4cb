package apotek

import "fmt"

// OutlierMethod defines the statistic used to flag outliers.
type OutlierMethod int

const (
	// ZScore flags values farther than a number of standard deviations from the mean.
	ZScore OutlierMethod = iota
	// IQR flags values outside the quartiles widened by a factor of the interquartile range.
	IQR
)

func (m OutlierMethod) String() string {
	switch m {
	case ZScore:
		return "zscore"
	case IQR:
		return "iqr"
	default:
		return "unknown"
	}
}

// ParseOutlierMethod parses a string into an OutlierMethod.
func ParseOutlierMethod(s string) (OutlierMethod, error) {
	switch s {
	case "zscore":
		return ZScore, nil
	case "iqr":
		return IQR, nil
	default:
		return 0, fmt.Errorf("%w: %q, use \"zscore\" or \"iqr\"", ErrUnsupportedMethod, s)
	}
}
