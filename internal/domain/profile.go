package domain

// WalletProfile bundles every analytics output for one wallet.
// Corresponds to wallet_profiles table in PostgreSQL.
type WalletProfile struct {
	Wallet      string             `json:"wallet"`             // wallet address (base58)
	GeneratedAt int64              `json:"generated_at"`       // profile computation timestamp (ms)
	Technique   *TechniqueFeatures `json:"technique"`          // per-mint rows + portfolio technique aggregate
	Outcomes    *OutcomesSummary   `json:"outcomes"`           // portfolio-wide outcome distribution
	Performance []MonthlyPnL       `json:"wallet_performance"` // monthly equity performance, chronological
	Curve       *CurveStats        `json:"wallet_curve"`       // equity-curve risk statistics, nil without curve data
}
