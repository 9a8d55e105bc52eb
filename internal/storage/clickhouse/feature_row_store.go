package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/storage"
)

// FeatureRowStore implements storage.FeatureRowStore using ClickHouse.
// Feature rows are analytical output written in bulk and queried by wallet,
// which fits ClickHouse's append-heavy column layout.
type FeatureRowStore struct {
	conn *Conn
}

// NewFeatureRowStore creates a new FeatureRowStore.
func NewFeatureRowStore(conn *Conn) *FeatureRowStore {
	return &FeatureRowStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureRowStore = (*FeatureRowStore)(nil)

// InsertBulk adds multiple rows for a wallet. Fails entire batch on
// duplicate (wallet, mint, computed_at).
func (s *FeatureRowStore) InsertBulk(ctx context.Context, wallet string, computedAt int64, rows []*domain.MintFeatureRow) error {
	if wallet == "" {
		return storage.ErrInvalidInput
	}
	if len(rows) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.Mint == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[r.Mint]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.Mint] = struct{}{}
	}

	// Check for duplicates against existing rows
	exists, err := s.exists(ctx, wallet, computedAt)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO mint_feature_rows (
			wallet, computed_at, mint, symbol, start_ts, end_ts,
			n_buys, n_sells, entry_spacing_mins_avg, entry_spacing_mins_std,
			entry_style_signal, entry_style_confidence,
			n_closed, median_gain_pct, p75_gain_pct, median_hold_mins,
			venue_mix
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		venueMix, err := json.Marshal(r.VenueMix)
		if err != nil {
			return fmt.Errorf("marshal venue mix: %w", err)
		}

		realized := r.Realized
		if realized == nil {
			realized = &domain.RealizedStats{}
		}

		err = batch.Append(
			wallet, uint64(computedAt), r.Mint, r.Symbol,
			uint64(r.StartTs), uint64(r.EndTs),
			uint32(r.NBuys), uint32(r.NSells),
			r.EntrySpacingMinsAvg, r.EntrySpacingMinsStd,
			r.EntryStyle.Signal, r.EntryStyle.Confidence,
			uint32(realized.NClosed), realized.MedianGainPct,
			realized.P75GainPct, realized.MedianHoldMins,
			string(venueMix),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByWallet retrieves the rows of a wallet's most recent computation,
// ordered by end_ts DESC.
func (s *FeatureRowStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.MintFeatureRow, error) {
	query := `
		SELECT mint, symbol, start_ts, end_ts,
		       n_buys, n_sells, entry_spacing_mins_avg, entry_spacing_mins_std,
		       entry_style_signal, entry_style_confidence,
		       n_closed, median_gain_pct, p75_gain_pct, median_hold_mins,
		       venue_mix
		FROM mint_feature_rows
		WHERE wallet = ?
		  AND computed_at = (SELECT max(computed_at) FROM mint_feature_rows WHERE wallet = ?)
		ORDER BY end_ts DESC, mint ASC
	`

	rows, err := s.conn.Query(ctx, query, wallet, wallet)
	if err != nil {
		return nil, fmt.Errorf("query feature rows: %w", err)
	}
	defer rows.Close()

	var result []*domain.MintFeatureRow
	for rows.Next() {
		var (
			r        domain.MintFeatureRow
			realized domain.RealizedStats
			startTs  uint64
			endTs    uint64
			nBuys    uint32
			nSells   uint32
			nClosed  uint32
			venueMix string
		)
		err := rows.Scan(
			&r.Mint, &r.Symbol, &startTs, &endTs,
			&nBuys, &nSells, &r.EntrySpacingMinsAvg, &r.EntrySpacingMinsStd,
			&r.EntryStyle.Signal, &r.EntryStyle.Confidence,
			&nClosed, &realized.MedianGainPct, &realized.P75GainPct, &realized.MedianHoldMins,
			&venueMix,
		)
		if err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}

		r.StartTs = int64(startTs)
		r.EndTs = int64(endTs)
		r.NBuys = int(nBuys)
		r.NSells = int(nSells)
		realized.NClosed = int(nClosed)
		r.Realized = &realized

		if venueMix != "" {
			if err := json.Unmarshal([]byte(venueMix), &r.VenueMix); err != nil {
				return nil, fmt.Errorf("unmarshal venue mix: %w", err)
			}
		}

		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}
	return result, nil
}

// exists checks if any row for (wallet, computed_at) is already stored.
func (s *FeatureRowStore) exists(ctx context.Context, wallet string, computedAt int64) (bool, error) {
	query := `
		SELECT count(*) FROM mint_feature_rows
		WHERE wallet = ? AND computed_at = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, wallet, uint64(computedAt)).Scan(&count); err != nil {
		return false, fmt.Errorf("count rows: %w", err)
	}
	return count > 0, nil
}
