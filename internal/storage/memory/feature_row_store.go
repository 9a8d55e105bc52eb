package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/storage"
)

// FeatureRowStore is an in-memory implementation of storage.FeatureRowStore.
type FeatureRowStore struct {
	mu   sync.RWMutex
	data map[string][]*featureRowRecord // keyed by wallet
}

// featureRowRecord wraps a row with its computation timestamp.
type featureRowRecord struct {
	computedAt int64
	row        *domain.MintFeatureRow
}

// NewFeatureRowStore creates a new in-memory feature row store.
func NewFeatureRowStore() *FeatureRowStore {
	return &FeatureRowStore{
		data: make(map[string][]*featureRowRecord),
	}
}

// Compile-time interface check.
var _ storage.FeatureRowStore = (*FeatureRowStore)(nil)

// InsertBulk adds multiple rows for a wallet. Fails entire batch on
// duplicate (wallet, mint, computed_at).
func (s *FeatureRowStore) InsertBulk(_ context.Context, wallet string, computedAt int64, rows []*domain.MintFeatureRow) error {
	if wallet == "" {
		return storage.ErrInvalidInput
	}
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct {
		mint       string
		computedAt int64
	}
	seen := make(map[key]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.Mint == "" {
			return storage.ErrInvalidInput
		}
		k := key{r.Mint, computedAt}
		if _, ok := seen[k]; ok {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}
	for _, rec := range s.data[wallet] {
		if rec.computedAt == computedAt {
			if _, ok := seen[key{rec.row.Mint, computedAt}]; ok {
				return storage.ErrDuplicateKey
			}
		}
	}

	for _, r := range rows {
		copy := *r
		s.data[wallet] = append(s.data[wallet], &featureRowRecord{computedAt: computedAt, row: &copy})
	}
	return nil
}

// GetByWallet retrieves the rows of a wallet's most recent computation,
// ordered by end_ts DESC.
func (s *FeatureRowStore) GetByWallet(_ context.Context, wallet string) ([]*domain.MintFeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.data[wallet]
	if len(records) == 0 {
		return nil, nil
	}

	latest := records[0].computedAt
	for _, rec := range records {
		if rec.computedAt > latest {
			latest = rec.computedAt
		}
	}

	var result []*domain.MintFeatureRow
	for _, rec := range records {
		if rec.computedAt == latest {
			copy := *rec.row
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EndTs != result[j].EndTs {
			return result[i].EndTs > result[j].EndTs
		}
		return result[i].Mint < result[j].Mint
	})
	return result, nil
}
