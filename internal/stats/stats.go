// Package stats provides the shared statistical primitives every analytics
// component is built on. All aggregates return nil on empty input so callers
// can distinguish "no data" from a legitimate zero.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of xs, nil on empty input.
func Mean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	m := sum / float64(len(xs))
	return &m
}

// Median returns the middle value of xs, nil on empty input.
// For an even count it averages the two middle values.
func Median(xs []float64) *float64 {
	n := len(xs)
	if n == 0 {
		return nil
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return &sorted[mid]
	}
	m := (sorted[mid-1] + sorted[mid]) / 2
	return &m
}

// Stddev returns the population standard deviation of xs (n denominator),
// nil on empty input.
func Stddev(xs []float64) *float64 {
	n := len(xs)
	if n == 0 {
		return nil
	}
	mean := *Mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		diff := x - mean
		sumSq += diff * diff
	}
	sd := math.Sqrt(sumSq / float64(n))
	return &sd
}

// Percentile returns the nearest-rank p-th percentile of xs, nil on empty
// input. p is in [0, 100]. The rank index is round((p/100)*(n-1)) clamped to
// the valid range, so results are always actual elements of xs and
// Percentile is monotonic in p.
func Percentile(xs []float64, p float64) *float64 {
	n := len(xs)
	if n == 0 {
		return nil
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	idx := int(math.Round(p / 100 * float64(n-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return &sorted[idx]
}
