package storage

import (
	"context"

	"wallet-behavior-lab/internal/domain"
)

// TradeStore provides access to wallet_trades storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.Trade) error

	// GetByWallet retrieves all trades for a wallet, ordered by timestamp ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.Trade, error)

	// GetByWalletMint retrieves a wallet's trades for one mint, ordered by timestamp ASC.
	GetByWalletMint(ctx context.Context, wallet, mint string) ([]*domain.Trade, error)

	// GetByWalletGrouped retrieves a wallet's trades keyed by mint,
	// each mint's trades ordered by timestamp ASC.
	GetByWalletGrouped(ctx context.Context, wallet string) (map[string][]*domain.Trade, error)
}

// EquityPointStore provides access to equity_points storage.
type EquityPointStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (wallet, timestamp_ms).
	InsertBulk(ctx context.Context, wallet string, points []*domain.EquityPoint) error

	// GetByWallet retrieves all points for a wallet, ordered by timestamp ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.EquityPoint, error)
}

// FeatureRowStore provides access to mint_feature_rows storage.
type FeatureRowStore interface {
	// InsertBulk adds multiple rows for a wallet. Fails entire batch on
	// duplicate (wallet, mint, computed_at).
	InsertBulk(ctx context.Context, wallet string, computedAt int64, rows []*domain.MintFeatureRow) error

	// GetByWallet retrieves the rows of a wallet's most recent computation,
	// ordered by end_ts DESC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.MintFeatureRow, error)
}

// ProfileStore provides access to wallet_profiles storage.
type ProfileStore interface {
	// Insert adds a new profile. Returns ErrDuplicateKey if
	// (wallet, generated_at) exists.
	Insert(ctx context.Context, p *domain.WalletProfile) error

	// GetLatest retrieves the most recent profile for a wallet.
	// Returns ErrNotFound if the wallet has no profile.
	GetLatest(ctx context.Context, wallet string) (*domain.WalletProfile, error)
}
