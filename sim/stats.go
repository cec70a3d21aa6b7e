package sim

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution captures the statistical summary of a per-run scalar such as R_res.
type Distribution struct {
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"` // population standard deviation
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// NewDistribution computes a Distribution from raw values.
// Returns zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	return Distribution{
		Mean:  mean,
		Std:   std,
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// percentile computes the p-th percentile using linear interpolation.
// Input must be sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// padCurve right-pads values with its own last element up to length n.
func padCurve(values []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, values)
	if len(values) == 0 {
		return out
	}
	last := values[len(values)-1]
	for i := len(values); i < n; i++ {
		out[i] = last
	}
	return out
}

// curveMeanStd returns the elementwise mean and population standard deviation
// of curves after padding each to the longest length.
func curveMeanStd(curves [][]float64) (mean, std []float64) {
	n := 0
	for _, c := range curves {
		n = max(n, len(c))
	}
	padded := make([][]float64, len(curves))
	for i, c := range curves {
		padded[i] = padCurve(c, n)
	}
	mean = make([]float64, n)
	std = make([]float64, n)
	column := make([]float64, len(curves))
	for j := 0; j < n; j++ {
		for i := range padded {
			column[i] = padded[i][j]
		}
		mean[j], std[j] = stat.PopMeanStdDev(column, nil)
	}
	return mean, std
}
