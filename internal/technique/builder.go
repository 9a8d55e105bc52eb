package technique

import (
	"sort"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/lots"
	"wallet-behavior-lab/internal/stats"
)

// Venue key used when a trade carries no program attribution.
const venueUnknown = "unknown"

// Build computes per-mint feature rows for every mint in mintMap and a
// portfolio aggregate over the topN most recently active mints.
//
// Rows are sorted by EndTs descending (mint ascending on ties) and the
// first topN are kept; topN <= 0 selects nothing. The overall aggregate is
// computed over the selected rows only.
func Build(mintMap map[string][]*domain.Trade, topN int) *domain.TechniqueFeatures {
	rows := make([]*domain.MintFeatureRow, 0, len(mintMap))
	for mint, trades := range mintMap {
		if row := buildRow(mint, trades); row != nil {
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].EndTs != rows[j].EndTs {
			return rows[i].EndTs > rows[j].EndTs
		}
		return rows[i].Mint < rows[j].Mint
	})

	if topN < 0 {
		topN = 0
	}
	if topN > len(rows) {
		topN = len(rows)
	}
	selected := rows[:topN]

	return &domain.TechniqueFeatures{
		Coins:   selected,
		Overall: buildOverall(selected),
	}
}

// buildRow computes one mint's feature row. Returns nil for a mint with no
// trades at all.
func buildRow(mint string, trades []*domain.Trade) *domain.MintFeatureRow {
	buys, sells := splitSorted(trades)
	if len(buys) == 0 && len(sells) == 0 {
		return nil
	}

	row := &domain.MintFeatureRow{
		Mint:       mint,
		Symbol:     firstSymbol(trades),
		NBuys:      len(buys),
		NSells:     len(sells),
		EntryStyle: Classify(buys),
		Realized:   lots.Match(buys, sells),
		VenueMix:   venueMix(buys),
	}

	row.StartTs, row.EndTs = timeBounds(buys, sells)

	if len(buys) >= 2 {
		gaps := make([]float64, 0, len(buys)-1)
		for i := 1; i < len(buys); i++ {
			gaps = append(gaps, float64(buys[i].Timestamp-buys[i-1].Timestamp)/60000)
		}
		row.EntrySpacingMinsAvg = stats.Mean(gaps)
		row.EntrySpacingMinsStd = stats.Stddev(gaps)
	}

	return row
}

// splitSorted separates trades into buys and sells, each sorted ascending
// by timestamp.
func splitSorted(trades []*domain.Trade) (buys, sells []*domain.Trade) {
	for _, t := range trades {
		switch t.Side {
		case domain.TradeSideBuy:
			buys = append(buys, t)
		case domain.TradeSideSell:
			sells = append(sells, t)
		}
	}
	byTime := func(ts []*domain.Trade) {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Timestamp < ts[j].Timestamp })
	}
	byTime(buys)
	byTime(sells)
	return buys, sells
}

// timeBounds returns the first trade timestamp and the activity end, which
// is the later of the last sell and the last trade overall.
func timeBounds(buys, sells []*domain.Trade) (startTs, endTs int64) {
	all := make([]*domain.Trade, 0, len(buys)+len(sells))
	all = append(all, buys...)
	all = append(all, sells...)

	for _, t := range all {
		if startTs == 0 || t.Timestamp < startTs {
			startTs = t.Timestamp
		}
		if t.Timestamp > endTs {
			endTs = t.Timestamp
		}
	}
	if len(sells) > 0 {
		last := sells[len(sells)-1].Timestamp
		if last > endTs {
			endTs = last
		}
	}
	return startTs, endTs
}

// venueMix returns each program's share of the buy count, normalized to 1.
func venueMix(buys []*domain.Trade) map[string]float64 {
	if len(buys) == 0 {
		return map[string]float64{}
	}
	counts := make(map[string]float64)
	for _, b := range buys {
		program := b.Program
		if program == "" {
			program = venueUnknown
		}
		counts[program]++
	}
	mix := make(map[string]float64, len(counts))
	for program, c := range counts {
		mix[program] = c / float64(len(buys))
	}
	return mix
}

// firstSymbol returns the first non-empty symbol seen, nil if none.
func firstSymbol(trades []*domain.Trade) *string {
	for _, t := range trades {
		if t.Symbol != "" {
			s := t.Symbol
			return &s
		}
	}
	return nil
}

// buildOverall aggregates the selected rows into the portfolio technique
// view. Win rate and average gain run over the flattened per-leg gains of
// every selected mint, so heavily traded mints weigh proportionally more.
func buildOverall(selected []*domain.MintFeatureRow) domain.OverallTechnique {
	overall := domain.OverallTechnique{
		NCoins:     len(selected),
		VenueShare: map[string]float64{},
	}
	if len(selected) == 0 {
		return overall
	}

	var (
		buysPerCoin []float64
		allLegs     []float64
		mintHolds   []float64
		venueTotals = make(map[string]float64)
	)
	for _, row := range selected {
		buysPerCoin = append(buysPerCoin, float64(row.NBuys))
		if row.Realized != nil {
			allLegs = append(allLegs, row.Realized.PerLegGainPct...)
			if row.Realized.MedianHoldMins != nil {
				mintHolds = append(mintHolds, *row.Realized.MedianHoldMins)
			}
		}
		for venue, share := range row.VenueMix {
			venueTotals[venue] += share
		}
	}

	overall.MeanBuysPerCoin = stats.Mean(buysPerCoin)
	overall.MedianHoldMins = stats.Median(mintHolds)
	overall.AvgRealizedGainPct = stats.Mean(allLegs)

	if len(allLegs) > 0 {
		wins := 0
		for _, g := range allLegs {
			if g > 0 {
				wins++
			}
		}
		rate := float64(wins) / float64(len(allLegs))
		overall.WinRate = &rate
	}

	total := 0.0
	for _, v := range venueTotals {
		total += v
	}
	if total > 0 {
		for venue, v := range venueTotals {
			overall.VenueShare[venue] = v / total
		}
	}

	return overall
}
