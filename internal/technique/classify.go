// Package technique derives per-mint trading technique features and a
// portfolio-level technique aggregate from a wallet's trade history.
package technique

import (
	"sort"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/stats"
)

// Maximum gap between buys (minutes) for the scale-in classification.
const scaleInMaxGapMins = 15.0

// Maximum stddev/mean ratio of buy gaps for the TWAP classification.
const twapMaxSpread = 0.10

// Classify labels the buy-timing pattern of one mint's accumulation.
//
// A single buy is trivially "single". With three or more buys whose gaps
// are nearly uniform the entries look machine-paced ("twap"); any gap of
// fifteen minutes or less marks clustered adds ("scale_in"); anything else
// falls back to irregular accumulation ("dca").
func Classify(buys []*domain.Trade) domain.EntryStyle {
	if len(buys) <= 1 {
		return domain.EntryStyle{Signal: domain.EntryStyleSingle, Confidence: 0.9}
	}

	times := make([]int64, len(buys))
	for i, b := range buys {
		times[i] = b.Timestamp
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	gaps := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		gaps = append(gaps, float64(times[i]-times[i-1])/60000)
	}

	avg := *stats.Mean(gaps)
	sd := *stats.Stddev(gaps)

	if len(buys) >= 3 && avg > 0 && sd/avg <= twapMaxSpread {
		return domain.EntryStyle{Signal: domain.EntryStyleTWAP, Confidence: 0.75}
	}
	for _, g := range gaps {
		if g <= scaleInMaxGapMins {
			return domain.EntryStyle{Signal: domain.EntryStyleScaleIn, Confidence: 0.70}
		}
	}
	return domain.EntryStyle{Signal: domain.EntryStyleDCA, Confidence: 0.50}
}
