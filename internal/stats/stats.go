// Package stats provides the descriptive statistics used by the analysis
// stages: quantiles, mean, median, population standard deviation and range.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"crywolf/internal/measure"
)

// Quantile returns the p-quantile of xs using linear interpolation between
// the closest ranks (h = (n-1)p), the estimator numpy applies by default.
// xs need not be sorted and is not modified. Empty input yields NA.
func Quantile(p float64, xs []float64) measure.Value {
	if len(xs) == 0 || p < 0 || p > 1 || math.IsNaN(p) {
		return measure.NA
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return QuantileSorted(p, sorted)
}

// QuantileSorted is Quantile for input already sorted ascending.
func QuantileSorted(p float64, sorted []float64) measure.Value {
	n := len(sorted)
	if n == 0 || p < 0 || p > 1 {
		return measure.NA
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return measure.Of(sorted[n-1])
	}
	frac := h - lo
	return measure.Of(sorted[i] + frac*(sorted[i+1]-sorted[i]))
}

// Median is the 0.5 quantile.
func Median(xs []float64) measure.Value {
	return Quantile(0.5, xs)
}

// Mean returns the arithmetic mean, or NA for empty input.
func Mean(xs []float64) measure.Value {
	if len(xs) == 0 {
		return measure.NA
	}
	return measure.Of(stat.Mean(xs, nil))
}

// PopStdDev returns the population (ddof = 0) standard deviation.
func PopStdDev(xs []float64) measure.Value {
	if len(xs) == 0 {
		return measure.NA
	}
	return measure.Of(math.Sqrt(stat.PopVariance(xs, nil)))
}

// Descriptive summarizes one sample.
type Descriptive struct {
	N      int           `json:"n"`
	Mean   measure.Value `json:"mean"`
	Median measure.Value `json:"median"`
	StdDev measure.Value `json:"std_dev"`
	Min    measure.Value `json:"min"`
	Max    measure.Value `json:"max"`
}

// Describe computes the descriptive summary of xs. Every field except N is
// NA for an empty sample.
func Describe(xs []float64) Descriptive {
	d := Descriptive{
		N:      len(xs),
		Mean:   Mean(xs),
		Median: Median(xs),
		StdDev: PopStdDev(xs),
	}
	if len(xs) > 0 {
		d.Min = measure.Of(floats.Min(xs))
		d.Max = measure.Of(floats.Max(xs))
	}
	return d
}

// DescribeValues is Describe over the present entries of vals.
func DescribeValues(vals []measure.Value) Descriptive {
	return Describe(measure.Floats(vals))
}
