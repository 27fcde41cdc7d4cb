package apotek

import (
	"fmt"
	"math"
	"slices"
)

// Defaults of the outlier detector.
const (
	DefaultOutlierColumn   = "qty_out"
	DefaultZScoreThreshold = 3.0
	DefaultIQRFactor       = 1.5
)

// NumericColumns are the transaction columns the detector can run on.
var NumericColumns = []string{"qty_in", "value_in", "qty_out", "value_out"}

// Column returns the values of a numeric column of txs.
func Column(txs []Transaction, column string) ([]float64, error) {
	var get func(Transaction) float64
	switch column {
	case "qty_in":
		get = func(t Transaction) float64 { return t.QtyIn.Float() }
	case "value_in":
		get = func(t Transaction) float64 { return t.ValueIn.Float() }
	case "qty_out":
		get = func(t Transaction) float64 { return t.QtyOut.Float() }
	case "value_out":
		get = func(t Transaction) float64 { return t.ValueOut.Float() }
	default:
		return nil, &ColumnError{Column: column, Reason: fmt.Sprintf("not a numeric transaction column, want one of %v", NumericColumns)}
	}
	values := make([]float64, len(txs))
	for i, tx := range txs {
		values[i] = get(tx)
	}
	return values, nil
}

// DetectOutliers flags the rows of txs whose column value is an outlier.
//
// With ZScore, param is the z-score threshold: |z| > param is an outlier. The
// standard deviation is the population one, and a constant column has no
// outliers. With IQR, param is the factor k: values outside
// [Q1 - k*IQR, Q3 + k*IQR] are outliers.
//
// The returned flags are aligned with txs.
func DetectOutliers(txs []Transaction, column string, method OutlierMethod, param float64) ([]bool, error) {
	values, err := Column(txs, column)
	if err != nil {
		return nil, err
	}
	switch method {
	case ZScore:
		return zscoreFlags(values, param), nil
	case IQR:
		return iqrFlags(values, param), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMethod, method)
	}
}

func zscoreFlags(values []float64, threshold float64) []bool {
	flags := make([]bool, len(values))
	if len(values) == 0 {
		return flags
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	std := math.Sqrt(sq / float64(len(values)))
	if std == 0 {
		return flags
	}
	for i, v := range values {
		flags[i] = math.Abs((v-mean)/std) > threshold
	}
	return flags
}

func iqrFlags(values []float64, factor float64) []bool {
	flags := make([]bool, len(values))
	if len(values) == 0 {
		return flags
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	q1, q3 := quantile(sorted, 0.25), quantile(sorted, 0.75)
	iqr := q3 - q1
	lower, upper := q1-factor*iqr, q3+factor*iqr
	for i, v := range values {
		flags[i] = v < lower || v > upper
	}
	return flags
}

// quantile of sorted values with linear interpolation between the closest ranks.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// CountFlags returns the number of true flags.
func CountFlags(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
