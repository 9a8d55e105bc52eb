package equity

import (
	"sort"
	"time"

	"wallet-behavior-lab/internal/domain"
)

// MonthlyPnL buckets the normalized series by UTC calendar month.
// start_value is the first chronological value in the bucket and end_value
// the last; the month's P&L is the percent move between them, 0 when the
// bucket starts at 0.
func MonthlyPnL(points []*domain.EquityPoint) []domain.MonthlyPnL {
	normalized := Normalize(points)
	if len(normalized) == 0 {
		return nil
	}

	buckets := make(map[string]*domain.MonthlyPnL)
	for _, p := range normalized {
		month := time.UnixMilli(p.TimestampMs).UTC().Format("2006-01")
		b, ok := buckets[month]
		if !ok {
			buckets[month] = &domain.MonthlyPnL{
				Month:      month,
				StartValue: p.Value,
				EndValue:   p.Value,
			}
			continue
		}
		b.EndValue = p.Value
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]domain.MonthlyPnL, 0, len(months))
	for _, m := range months {
		b := buckets[m]
		if b.StartValue != 0 {
			b.PnlPct = (b.EndValue - b.StartValue) / b.StartValue * 100
		}
		out = append(out, *b)
	}
	return out
}
