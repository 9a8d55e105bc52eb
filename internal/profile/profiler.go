package profile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/equity"
	"wallet-behavior-lab/internal/outcomes"
	"wallet-behavior-lab/internal/storage"
	"wallet-behavior-lab/internal/technique"
)

// DefaultTopN bounds the per-mint technique rows kept in a profile.
const DefaultTopN = 50

// Profiler loads a wallet's stored trades and equity points, runs the
// analytics over them, and persists the resulting profile. The analytics
// themselves are pure; given identical stored inputs two runs produce
// identical profiles apart from the generation timestamp.
type Profiler struct {
	trades      storage.TradeStore
	equity      storage.EquityPointStore
	featureRows storage.FeatureRowStore
	profiles    storage.ProfileStore
	topN        int
	clock       func() time.Time
	verbose     bool
}

// NewProfiler creates a Profiler. featureRows and profiles may be nil,
// in which case the corresponding outputs are computed but not persisted.
func NewProfiler(trades storage.TradeStore, equityStore storage.EquityPointStore, featureRows storage.FeatureRowStore, profiles storage.ProfileStore) *Profiler {
	return &Profiler{
		trades:      trades,
		equity:      equityStore,
		featureRows: featureRows,
		profiles:    profiles,
		topN:        DefaultTopN,
		clock:       func() time.Time { return time.Now().UTC() },
	}
}

// WithTopN sets how many per-mint rows the technique view keeps.
func (p *Profiler) WithTopN(n int) *Profiler {
	p.topN = n
	return p
}

// WithClock sets a custom clock function for deterministic output.
func (p *Profiler) WithClock(clock func() time.Time) *Profiler {
	p.clock = clock
	return p
}

// WithVerbose enables progress logging.
func (p *Profiler) WithVerbose(v bool) *Profiler {
	p.verbose = v
	return p
}

// BuildProfile computes and persists the full analytics profile for one
// wallet from its stored trades and equity points.
func (p *Profiler) BuildProfile(ctx context.Context, wallet string) (*domain.WalletProfile, error) {
	if wallet == "" {
		return nil, storage.ErrInvalidInput
	}

	mintMap, err := p.trades.GetByWalletGrouped(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}

	points, err := p.equity.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("load equity points: %w", err)
	}

	if p.verbose {
		log.Printf("[profile] wallet=%s mints=%d equity_points=%d", wallet, len(mintMap), len(points))
	}

	generatedAt := p.clock().UnixMilli()

	prof := &domain.WalletProfile{
		Wallet:      wallet,
		GeneratedAt: generatedAt,
		Technique:   technique.Build(mintMap, p.topN),
		Outcomes:    outcomes.Aggregate(mintMap, points),
		Performance: equity.MonthlyPnL(points),
		Curve:       equity.CurveStats(points),
	}

	if err := p.persist(ctx, prof); err != nil {
		return nil, err
	}

	if p.verbose {
		log.Printf("[profile] wallet=%s coins=%d generated_at=%d",
			wallet, len(prof.Technique.Coins), generatedAt)
	}

	return prof, nil
}

// persist writes feature rows and the profile snapshot. A duplicate
// profile for the same (wallet, generated_at) means a concurrent run
// already wrote this second; that result is equivalent, so it is not
// an error.
func (p *Profiler) persist(ctx context.Context, prof *domain.WalletProfile) error {
	if p.featureRows != nil && len(prof.Technique.Coins) > 0 {
		err := p.featureRows.InsertBulk(ctx, prof.Wallet, prof.GeneratedAt, prof.Technique.Coins)
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("persist feature rows: %w", err)
		}
	}

	if p.profiles != nil {
		err := p.profiles.Insert(ctx, prof)
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("persist profile: %w", err)
		}
	}

	return nil
}

// Latest returns the most recently persisted profile for a wallet.
func (p *Profiler) Latest(ctx context.Context, wallet string) (*domain.WalletProfile, error) {
	if p.profiles == nil {
		return nil, storage.ErrNotFound
	}
	return p.profiles.GetLatest(ctx, wallet)
}
