package domain

// EquityPoint is one sample of a wallet's portfolio value over time.
// Produced by the ingestion adapter; at least one of Value and PnlPct is
// expected to be set, a point with neither carries no signal.
type EquityPoint struct {
	TimestampMs int64    `json:"timestamp_ms"` // Unix timestamp in milliseconds
	Value       *float64 `json:"value"`        // absolute portfolio value, nil if not reported
	PnlPct      *float64 `json:"pnl_pct"`      // cumulative P&L percentage, nil if not reported
}

// NormalizedPoint is an equity sample reduced to a single usable value.
type NormalizedPoint struct {
	TimestampMs int64   `json:"timestamp_ms"` // Unix timestamp in milliseconds
	Value       float64 `json:"value"`        // portfolio value (direct or synthesized from P&L)
}

// MonthlyPnL is one UTC calendar month of equity performance.
type MonthlyPnL struct {
	Month      string  `json:"month"`       // "YYYY-MM", UTC
	PnlPct     float64 `json:"pnl_pct"`     // (end - start) / start * 100, 0 when start is 0
	StartValue float64 `json:"start_value"` // first value seen in the month
	EndValue   float64 `json:"end_value"`   // last value seen in the month
}

// CurveStats holds risk statistics of a wallet's daily equity curve.
// Corresponds to wallet_curve column set in wallet_profiles table.
type CurveStats struct {
	PnlMaxPct              float64 `json:"pnl_max_pct"`                // best daily value vs first day, %
	PnlMinPct              float64 `json:"pnl_min_pct"`                // worst daily value vs first day, %
	MaxDrawdownPct         float64 `json:"max_drawdown_pct"`           // most negative peak-to-trough decline, %
	Volatility30dPct       float64 `json:"volatility_30d_pct"`         // annualized stddev of last <=30 daily returns, %
	RecoveryDaysFromLastDD *int    `json:"recovery_days_from_last_dd"` // days from max-drawdown trough back to its peak, nil if never recovered
	MaxUpDays              int     `json:"max_up_days"`                // longest run of strictly positive daily returns
	MaxDownDays            int     `json:"max_down_days"`              // longest run of strictly negative daily returns
}
