package postgres

import (
	"context"
	"fmt"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/storage"
)

// EquityPointStore implements storage.EquityPointStore using PostgreSQL.
type EquityPointStore struct {
	pool *Pool
}

// NewEquityPointStore creates a new EquityPointStore.
func NewEquityPointStore(pool *Pool) *EquityPointStore {
	return &EquityPointStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EquityPointStore = (*EquityPointStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (wallet, timestamp_ms).
func (s *EquityPointStore) InsertBulk(ctx context.Context, wallet string, points []*domain.EquityPoint) error {
	if wallet == "" {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO equity_points (wallet, timestamp_ms, value, pnl_pct)
		VALUES ($1, $2, $3, $4)
	`
	for _, p := range points {
		if p == nil {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, query, wallet, p.TimestampMs, p.Value, p.PnlPct); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert equity point: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByWallet retrieves all points for a wallet, ordered by timestamp ASC.
func (s *EquityPointStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.EquityPoint, error) {
	query := `
		SELECT timestamp_ms, value, pnl_pct
		FROM equity_points
		WHERE wallet = $1
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("query equity points: %w", err)
	}
	defer rows.Close()

	var points []*domain.EquityPoint
	for rows.Next() {
		p := &domain.EquityPoint{}
		if err := rows.Scan(&p.TimestampMs, &p.Value, &p.PnlPct); err != nil {
			return nil, fmt.Errorf("scan equity point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equity points: %w", err)
	}
	return points, nil
}
