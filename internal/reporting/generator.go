package reporting

import (
	"context"
	"time"

	"wallet-behavior-lab/internal/storage"
)

// Generator produces reports from stored wallet profiles.
type Generator struct {
	profileStore storage.ProfileStore
	now          func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(profileStore storage.ProfileStore) *Generator {
	return &Generator{
		profileStore: profileStore,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds a report from the wallet's most recent stored profile.
// Returns storage.ErrNotFound if the wallet was never profiled.
func (g *Generator) Generate(ctx context.Context, wallet string) (*Report, error) {
	profile, err := g.profileStore.GetLatest(ctx, wallet)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt:        g.now(),
		Wallet:             profile.Wallet,
		ProfileGeneratedAt: profile.GeneratedAt,
		Technique:          profile.Technique,
		Outcomes:           profile.Outcomes,
		Performance:        profile.Performance,
		Curve:              profile.Curve,
	}, nil
}
