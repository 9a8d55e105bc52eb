// Package outcomes computes the portfolio-wide outcome distribution of a
// wallet, weighing every mint once regardless of how often it was traded.
package outcomes

import (
	"sort"
	"time"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/lots"
	"wallet-behavior-lab/internal/stats"
)

// Aggregate collapses each mint in mintMap to its median realized gain and
// summarizes the distribution of those representatives. Unlike
// technique.Build it runs over every mint with no top-N cap, and a mint's
// trade count does not change its weight.
//
// equity may be nil; when supplied, points with |pnl %| >= 200 are flagged
// as spike days.
func Aggregate(mintMap map[string][]*domain.Trade, equity []*domain.EquityPoint) *domain.OutcomesSummary {
	var (
		exits      []float64 // one median gain per mint
		mintHolds  []float64 // one median hold per mint
		rtGains    []float64 // round-trip gains of effectively flat mints
		rtHolds    []float64 // round-trip holds of effectively flat mints
	)

	for _, trades := range mintMap {
		buys, sells := splitSorted(trades)
		realized := lots.Match(buys, sells)
		if realized.MedianGainPct != nil {
			exits = append(exits, *realized.MedianGainPct)
		}
		if realized.MedianHoldMins != nil {
			mintHolds = append(mintHolds, *realized.MedianHoldMins)
		}

		if gain, hold, ok := roundTrip(buys, sells); ok {
			rtGains = append(rtGains, gain)
			rtHolds = append(rtHolds, hold)
		}
	}

	summary := &domain.OutcomesSummary{
		NMints:                  len(exits),
		MedianExitPct:           stats.Median(exits),
		P25ExitPct:              stats.Percentile(exits, 25),
		P75ExitPct:              stats.Percentile(exits, 75),
		P95ExitPct:              stats.Percentile(exits, 95),
		MedianHoldMins:          stats.Median(mintHolds),
		MedianRoundTripPct:      stats.Median(rtGains),
		MedianRoundTripHoldMins: stats.Median(rtHolds),
		SpikeDays:               spikeDays(equity),
	}

	if summary.P25ExitPct != nil && summary.P75ExitPct != nil {
		iqr := *summary.P75ExitPct - *summary.P25ExitPct
		summary.IqrExitPct = &iqr
	}

	if len(exits) > 0 {
		wins, deep := 0, 0
		maxWin, maxLoss := exits[0], exits[0]
		for _, e := range exits {
			if e > 0 {
				wins++
			}
			if e < -10 {
				deep++
			}
			if e > maxWin {
				maxWin = e
			}
			if e < maxLoss {
				maxLoss = e
			}
		}
		rate := float64(wins) / float64(len(exits))
		deepShare := float64(deep) / float64(len(exits))
		summary.WinRate = &rate
		summary.PctTradesLtMinus10 = &deepShare
		summary.MaxWinPct = &maxWin
		summary.MaxLossPct = &maxLoss
	}

	return summary
}

// roundTrip collapses a mint's whole history into one open-to-close cycle
// when the residual position is within tolerance of flat. Returns ok=false
// when the mint never traded both sides, is still meaningfully open, or has
// no positive buy spend.
func roundTrip(buys, sells []*domain.Trade) (gainPct, holdMins float64, ok bool) {
	if len(buys) == 0 || len(sells) == 0 {
		return 0, 0, false
	}

	var boughtQty, soldQty, buyUsd, sellUsd float64
	for _, b := range buys {
		boughtQty += b.Amount
		buyUsd += b.Amount * b.PriceUsd
	}
	for _, s := range sells {
		soldQty += s.Amount
		sellUsd += s.Amount * s.PriceUsd
	}

	if boughtQty <= 0 || buyUsd <= 0 {
		return 0, 0, false
	}
	residual := boughtQty - soldQty
	if residual < 0 {
		residual = -residual
	}
	if residual/boughtQty > domain.RoundTripFlatTolerance {
		return 0, 0, false
	}

	gainPct = (sellUsd - buyUsd) / buyUsd * 100
	holdMins = float64(sells[len(sells)-1].Timestamp-buys[0].Timestamp) / 60000
	return gainPct, holdMins, true
}

// spikeDays flags equity points whose reported P&L percentage is extreme.
func spikeDays(equity []*domain.EquityPoint) []domain.SpikeDay {
	var spikes []domain.SpikeDay
	for _, p := range equity {
		if p == nil || p.PnlPct == nil {
			continue
		}
		pct := *p.PnlPct
		if pct >= domain.SpikeDayThresholdPct || pct <= -domain.SpikeDayThresholdPct {
			spikes = append(spikes, domain.SpikeDay{
				Date:   time.UnixMilli(p.TimestampMs).UTC().Format("2006-01-02"),
				PnlPct: pct,
			})
		}
	}
	sort.Slice(spikes, func(i, j int) bool { return spikes[i].Date < spikes[j].Date })
	return spikes
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
