package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/storage"
)

// EquityPointStore is an in-memory implementation of storage.EquityPointStore.
type EquityPointStore struct {
	mu   sync.RWMutex
	data map[string]map[int64]*domain.EquityPoint // wallet -> timestamp_ms -> point
}

// NewEquityPointStore creates a new in-memory equity point store.
func NewEquityPointStore() *EquityPointStore {
	return &EquityPointStore{
		data: make(map[string]map[int64]*domain.EquityPoint),
	}
}

// Compile-time interface check.
var _ storage.EquityPointStore = (*EquityPointStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (wallet, timestamp_ms).
func (s *EquityPointStore) InsertBulk(_ context.Context, wallet string, points []*domain.EquityPoint) error {
	if wallet == "" {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[wallet]
	batchKeys := make(map[int64]struct{}, len(points))
	for _, p := range points {
		if p == nil {
			return storage.ErrInvalidInput
		}
		if _, ok := existing[p.TimestampMs]; ok {
			return storage.ErrDuplicateKey
		}
		if _, ok := batchKeys[p.TimestampMs]; ok {
			return storage.ErrDuplicateKey
		}
		batchKeys[p.TimestampMs] = struct{}{}
	}

	if existing == nil {
		existing = make(map[int64]*domain.EquityPoint, len(points))
		s.data[wallet] = existing
	}
	for _, p := range points {
		copy := *p
		existing[p.TimestampMs] = &copy
	}
	return nil
}

// GetByWallet retrieves all points for a wallet, ordered by timestamp ASC.
func (s *EquityPointStore) GetByWallet(_ context.Context, wallet string) ([]*domain.EquityPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.EquityPoint
	for _, p := range s.data[wallet] {
		copy := *p
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}
