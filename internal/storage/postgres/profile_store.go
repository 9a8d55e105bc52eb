package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/storage"
)

// ProfileStore implements storage.ProfileStore using PostgreSQL.
// The nested analytics payload is stored as JSONB next to the key columns,
// so one row holds one complete profile snapshot.
type ProfileStore struct {
	pool *Pool
}

// NewProfileStore creates a new ProfileStore.
func NewProfileStore(pool *Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProfileStore = (*ProfileStore)(nil)

// Insert adds a new profile. Returns ErrDuplicateKey if (wallet, generated_at) exists.
func (s *ProfileStore) Insert(ctx context.Context, p *domain.WalletProfile) error {
	if p == nil || p.Wallet == "" {
		return storage.ErrInvalidInput
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	query := `
		INSERT INTO wallet_profiles (wallet, generated_at, payload)
		VALUES ($1, $2, $3)
	`
	if _, err := s.pool.Exec(ctx, query, p.Wallet, p.GeneratedAt, payload); err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent profile for a wallet.
func (s *ProfileStore) GetLatest(ctx context.Context, wallet string) (*domain.WalletProfile, error) {
	query := `
		SELECT payload
		FROM wallet_profiles
		WHERE wallet = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`

	var payload []byte
	if err := s.pool.QueryRow(ctx, query, wallet).Scan(&payload); err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("query latest profile: %w", err)
	}

	p := &domain.WalletProfile{}
	if err := json.Unmarshal(payload, p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return p, nil
}
