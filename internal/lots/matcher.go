// Package lots implements FIFO lot matching of a wallet's buys and sells
// for a single mint, producing realized gain and hold-time statistics.
package lots

import (
	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/stats"
)

// lot is the mutable working copy of one buy. Created and consumed only
// inside Match; removed from the queue once qty reaches 0.
type lot struct {
	qty      float64
	priceUsd float64
	time     int64
}

// Match runs FIFO lot matching over one mint's buys and sells.
// Both slices must be pre-sorted ascending by timestamp.
//
// Buys become lots in acquisition order. Each sell consumes from the front
// of the lot queue; a partially consumed lot stays at the front with its
// remaining quantity. A sell leg's gain is recorded only when it consumed a
// strictly positive USD spend. Hold time is recorded whenever a sell drains
// the queue, measured from the first buy of that flat-to-flat cycle.
//
// Sell quantity that finds no lot to consume is dropped from the gain
// calculation and reported in UnmatchedSellQty (see DESIGN.md on the
// over-sell ambiguity).
func Match(buys, sells []*domain.Trade) *domain.RealizedStats {
	if len(buys) == 0 || len(sells) == 0 {
		return &domain.RealizedStats{}
	}

	var (
		queue         []*lot
		perLeg        []float64
		holds         []float64
		unmatched     float64
		cycleFirstBuy int64 = -1
	)

	// Merge buys and sells by time so a buy placed after a flat point opens
	// a new cycle instead of extending the previous one.
	bi := 0
	for _, sell := range sells {
		for bi < len(buys) && buys[bi].Timestamp <= sell.Timestamp {
			b := buys[bi]
			if cycleFirstBuy < 0 {
				cycleFirstBuy = b.Timestamp
			}
			queue = append(queue, &lot{qty: b.Amount, priceUsd: b.PriceUsd, time: b.Timestamp})
			bi++
		}

		remaining := sell.Amount
		realizedUsd := 0.0
		spentUsd := 0.0

		for remaining > 0 && len(queue) > 0 {
			front := queue[0]
			taken := front.qty
			if remaining < taken {
				taken = remaining
			}
			realizedUsd += taken * sell.PriceUsd
			spentUsd += taken * front.priceUsd
			front.qty -= taken
			remaining -= taken
			if front.qty <= 0 {
				queue = queue[1:]
			}
		}
		unmatched += remaining

		if spentUsd > 0 {
			perLeg = append(perLeg, (realizedUsd-spentUsd)/spentUsd*100)
		}

		// Position back to flat: close the hold cycle.
		if len(queue) == 0 && cycleFirstBuy >= 0 {
			holds = append(holds, float64(sell.Timestamp-cycleFirstBuy)/60000)
			cycleFirstBuy = -1
		}
	}

	return &domain.RealizedStats{
		NClosed:          len(perLeg),
		MedianGainPct:    stats.Median(perLeg),
		P75GainPct:       stats.Percentile(perLeg, 75),
		MedianHoldMins:   stats.Median(holds),
		PerLegGainPct:    perLeg,
		UnmatchedSellQty: unmatched,
	}
}
