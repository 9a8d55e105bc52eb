package reporting

import (
	"time"

	"wallet-behavior-lab/internal/domain"
)

// Report is a rendered view of one wallet's behavior profile.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Wallet      string

	// Profile generation time as stored, ms epoch
	ProfileGeneratedAt int64

	// Technique view (per-mint rows + portfolio aggregate)
	Technique *domain.TechniqueFeatures

	// Portfolio-wide outcome distribution
	Outcomes *domain.OutcomesSummary

	// Monthly equity performance, chronological
	Performance []domain.MonthlyPnL

	// Equity-curve risk statistics, nil without curve data
	Curve *domain.CurveStats
}
