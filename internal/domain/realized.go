package domain

// RealizedStats summarizes the realized outcome of one mint's buy/sell
// history after FIFO lot matching.
// Aggregate fields are nil when no leg could be realized.
type RealizedStats struct {
	NClosed          int       `json:"n_closed"`           // number of realized sell legs
	MedianGainPct    *float64  `json:"median_gain_pct"`    // median per-leg gain %, nil if no legs
	P75GainPct       *float64  `json:"p75_gain_pct"`       // 75th percentile per-leg gain %, nil if no legs
	MedianHoldMins   *float64  `json:"median_hold_mins"`   // median flat-to-flat hold in minutes, nil if never flat
	PerLegGainPct    []float64 `json:"per_leg_gain_pct"`   // gain % of each realized leg, chronological
	UnmatchedSellQty float64   `json:"unmatched_sell_qty"` // sell quantity that found no lot to consume
}
