// Package equity normalizes a wallet's raw equity/P&L time series and
// computes monthly performance and curve risk statistics from it.
package equity

import (
	"sort"

	"wallet-behavior-lab/internal/domain"
)

// Baseline portfolio value used when the series only reports P&L
// percentages and values have to be synthesized.
const syntheticBaseline = 100.0

// Normalize reduces raw equity points to a single ascending value series.
//
// Direct values win: if any point in the series carries a usable Value,
// only those points are kept and the rest are dropped. Otherwise a value
// series is synthesized from the cumulative P&L percentage against a
// baseline of 100.
func Normalize(points []*domain.EquityPoint) []domain.NormalizedPoint {
	hasValue := false
	for _, p := range points {
		if p != nil && p.Value != nil {
			hasValue = true
			break
		}
	}

	var out []domain.NormalizedPoint
	for _, p := range points {
		if p == nil {
			continue
		}
		if hasValue {
			if p.Value != nil {
				out = append(out, domain.NormalizedPoint{TimestampMs: p.TimestampMs, Value: *p.Value})
			}
			continue
		}
		if p.PnlPct != nil {
			out = append(out, domain.NormalizedPoint{
				TimestampMs: p.TimestampMs,
				Value:       syntheticBaseline * (1 + *p.PnlPct/100),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TimestampMs < out[j].TimestampMs })
	return out
}
