package domain

// EntryStyle classifies how a wallet accumulated a position.
type EntryStyle struct {
	Signal     string  `json:"signal"`     // one of the EntryStyle* constants
	Confidence float64 `json:"confidence"` // heuristic confidence in [0, 1]
}

// Entry style signal constants
const (
	EntryStyleSingle  = "single"   // one-shot entry
	EntryStyleTWAP    = "twap"     // evenly paced accumulation
	EntryStyleScaleIn = "scale_in" // tightly clustered adds
	EntryStyleDCA     = "dca"      // irregular, spaced-out accumulation
)

// MintFeatureRow holds per-mint technique features for one wallet.
// Corresponds to mint_feature_rows table in ClickHouse.
type MintFeatureRow struct {
	Mint                string             `json:"mint"`                   // token mint address
	Symbol              *string            `json:"symbol"`                 // token symbol, nil if unknown
	StartTs             int64              `json:"start_ts"`               // first trade timestamp (ms)
	EndTs               int64              `json:"end_ts"`                 // max(last sell, last trade) timestamp (ms)
	NBuys               int                `json:"n_buys"`                 // buy count
	NSells              int                `json:"n_sells"`                // sell count
	EntrySpacingMinsAvg *float64           `json:"entry_spacing_mins_avg"` // mean gap between buys in minutes, nil if <2 buys
	EntrySpacingMinsStd *float64           `json:"entry_spacing_mins_std"` // population stddev of buy gaps, nil if <2 buys
	EntryStyle          EntryStyle         `json:"entry_style"`            // classified accumulation pattern
	Realized            *RealizedStats     `json:"realized"`               // FIFO-matched realized outcome
	VenueMix            map[string]float64 `json:"venue_mix"`              // buy count share per program, sums to 1
}

// OverallTechnique aggregates technique features across the selected mints.
//
// WinRate and AvgRealizedGainPct are computed over the flattened per-leg
// gains of every selected mint, so mints with many closed legs weigh more.
// This is deliberately a different statistic from OutcomesSummary.WinRate,
// which weighs each mint once.
type OverallTechnique struct {
	NCoins             int                `json:"n_coins"`               // number of selected mints
	MeanBuysPerCoin    *float64           `json:"mean_buys_per_coin"`    // mean buy count per mint, nil if none
	MedianHoldMins     *float64           `json:"median_hold_mins"`      // median of per-mint median holds, nil-skipped
	WinRate            *float64           `json:"win_rate"`              // fraction of positive per-leg gains
	AvgRealizedGainPct *float64           `json:"avg_realized_gain_pct"` // mean of per-leg gains
	VenueShare         map[string]float64 `json:"venue_share"`           // renormalized venue mix across mints
}

// TechniqueFeatures is the full technique view for one wallet.
type TechniqueFeatures struct {
	Coins   []*MintFeatureRow `json:"coins"`   // per-mint rows, most recently active first
	Overall OverallTechnique  `json:"overall"` // portfolio aggregate over Coins
}
