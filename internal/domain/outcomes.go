package domain

// OutcomesSummary is the portfolio-wide outcome distribution for one wallet.
//
// Every mint in the wallet's history contributes exactly one representative
// value (its median realized gain), so a mint traded once counts the same as
// a mint traded fifty times. See OverallTechnique for the per-leg view.
type OutcomesSummary struct {
	NMints                  int        `json:"n_mints"`                     // mints with at least one realized leg
	WinRate                 *float64   `json:"win_rate"`                    // fraction of mints with positive median gain
	MedianExitPct           *float64   `json:"median_exit_pct"`             // median of per-mint median gains
	P25ExitPct              *float64   `json:"p25_exit_pct"`                // 25th percentile
	P75ExitPct              *float64   `json:"p75_exit_pct"`                // 75th percentile
	P95ExitPct              *float64   `json:"p95_exit_pct"`                // 95th percentile
	IqrExitPct              *float64   `json:"iqr_exit_pct"`                // P75 - P25
	MaxWinPct               *float64   `json:"max_win_pct"`                 // best per-mint median gain
	MaxLossPct              *float64   `json:"max_loss_pct"`                // worst per-mint median gain
	PctTradesLtMinus10      *float64   `json:"pct_trades_lt_minus_10"`      // share of mints with median gain < -10%
	MedianHoldMins          *float64   `json:"median_hold_mins"`            // median of per-mint median holds
	MedianRoundTripPct      *float64   `json:"median_round_trip_pct"`       // median whole-history gain of flat mints
	MedianRoundTripHoldMins *float64   `json:"median_round_trip_hold_mins"` // median whole-history hold of flat mints
	SpikeDays               []SpikeDay `json:"spike_days"`                  // equity-curve days with |pnl %| >= 200
}

// SpikeDay flags one equity-curve point with an extreme daily P&L swing.
type SpikeDay struct {
	Date   string  `json:"date"`    // UTC date, YYYY-MM-DD
	PnlPct float64 `json:"pnl_pct"` // reported P&L percentage for the day
}

// Residual position tolerance below which a mint's whole history counts as
// one closed round trip.
const RoundTripFlatTolerance = 0.02

// Daily P&L percentage magnitude at and above which a day is a spike day.
const SpikeDayThresholdPct = 200.0
