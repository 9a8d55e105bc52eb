package memory

import (
	"context"
	"sync"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/storage"
)

// ProfileStore is an in-memory implementation of storage.ProfileStore.
type ProfileStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.WalletProfile // keyed by wallet, append order
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		data: make(map[string][]*domain.WalletProfile),
	}
}

// Compile-time interface check.
var _ storage.ProfileStore = (*ProfileStore)(nil)

// Insert adds a new profile. Returns ErrDuplicateKey if (wallet, generated_at) exists.
func (s *ProfileStore) Insert(_ context.Context, p *domain.WalletProfile) error {
	if p == nil || p.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data[p.Wallet] {
		if existing.GeneratedAt == p.GeneratedAt {
			return storage.ErrDuplicateKey
		}
	}

	copy := *p
	s.data[p.Wallet] = append(s.data[p.Wallet], &copy)
	return nil
}

// GetLatest retrieves the most recent profile for a wallet.
func (s *ProfileStore) GetLatest(_ context.Context, wallet string) (*domain.WalletProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := s.data[wallet]
	if len(profiles) == 0 {
		return nil, storage.ErrNotFound
	}

	latest := profiles[0]
	for _, p := range profiles[1:] {
		if p.GeneratedAt > latest.GeneratedAt {
			latest = p
		}
	}

	copy := *latest
	return &copy, nil
}
