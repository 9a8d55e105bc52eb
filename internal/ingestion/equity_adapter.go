package ingestion

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"wallet-behavior-lab/internal/domain"
)

// Equity providers disagree on key names for the same fields. All aliasing
// happens here, once; consumers only ever see typed domain.EquityPoint.
var (
	equityTimeKeys  = []string{"date", "day", "time", "timestamp"}
	equityValueKeys = []string{"value", "equity", "balance", "total_value"}
	equityPnlKeys   = []string{"pnlPercentage", "pnl_pct", "pnl_percentage"}
)

// Millisecond epochs are 13 digits; anything below this is treated as seconds.
const epochMsThreshold = int64(1e12)

// AdaptEquityPoints converts raw provider samples into typed equity points.
// Points without a resolvable timestamp are dropped. Unparseable value or
// pnl fields become nil, never 0; points where both are nil are dropped.
// Output is sorted ascending by timestamp.
func AdaptEquityPoints(raw []map[string]interface{}) []*domain.EquityPoint {
	points := make([]*domain.EquityPoint, 0, len(raw))

	for _, sample := range raw {
		ts, ok := resolveTimestamp(sample)
		if !ok {
			continue
		}

		p := &domain.EquityPoint{
			TimestampMs: ts,
			Value:       resolveNumeric(sample, equityValueKeys),
			PnlPct:      resolveNumeric(sample, equityPnlKeys),
		}
		if p.Value == nil && p.PnlPct == nil {
			continue
		}

		points = append(points, p)
	}

	sortEquityPoints(points)
	return points
}

// resolveTimestamp finds the first aliased time key and converts it to
// epoch milliseconds. Accepts numeric epochs (seconds or milliseconds)
// and common date strings.
func resolveTimestamp(sample map[string]interface{}) (int64, bool) {
	for _, key := range equityTimeKeys {
		v, ok := sample[key]
		if !ok {
			continue
		}

		switch t := v.(type) {
		case float64:
			return normalizeEpoch(int64(t)), true
		case int64:
			return normalizeEpoch(t), true
		case json.Number:
			n, err := t.Int64()
			if err != nil {
				continue
			}
			return normalizeEpoch(n), true
		case string:
			if ts, ok := parseDateString(t); ok {
				return ts, true
			}
		}
	}
	return 0, false
}

func normalizeEpoch(v int64) int64 {
	if v > 0 && v < epochMsThreshold {
		return v * 1000
	}
	return v
}

func parseDateString(s string) (int64, bool) {
	// A numeric string is an epoch
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return normalizeEpoch(n), true
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().UnixMilli(), true
		}
	}
	return 0, false
}

// resolveNumeric finds the first aliased key holding a parseable number.
// Returns nil when no alias resolves; missing data must stay distinguishable
// from a true zero.
func resolveNumeric(sample map[string]interface{}, keys []string) *float64 {
	for _, key := range keys {
		v, ok := sample[key]
		if !ok {
			continue
		}

		switch n := v.(type) {
		case float64:
			return &n
		case int64:
			f := float64(n)
			return &f
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return &f
			}
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func sortEquityPoints(points []*domain.EquityPoint) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].TimestampMs < points[j].TimestampMs
	})
}
