package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const insertTradeQuery = `
	INSERT INTO wallet_trades (
		trade_id, wallet, mint, symbol, tx_signature,
		side, amount, price_usd, timestamp_ms, program
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10
	)
`

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertTradeQuery,
		t.TradeID, t.Wallet, t.Mint, t.Symbol, t.TxSignature,
		t.Side, t.Amount, t.PriceUsd, t.Timestamp, t.Program,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertTradeQuery,
			t.TradeID, t.Wallet, t.Mint, t.Symbol, t.TxSignature,
			t.Side, t.Amount, t.PriceUsd, t.Timestamp, t.Program,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade in batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByWallet retrieves all trades for a wallet, ordered by timestamp ASC.
func (s *TradeStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.Trade, error) {
	query := `
		SELECT trade_id, wallet, mint, symbol, tx_signature,
		       side, amount, price_usd, timestamp_ms, program
		FROM wallet_trades
		WHERE wallet = $1
		ORDER BY timestamp_ms ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("query trades by wallet: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByWalletMint retrieves a wallet's trades for one mint, ordered by timestamp ASC.
func (s *TradeStore) GetByWalletMint(ctx context.Context, wallet, mint string) ([]*domain.Trade, error) {
	query := `
		SELECT trade_id, wallet, mint, symbol, tx_signature,
		       side, amount, price_usd, timestamp_ms, program
		FROM wallet_trades
		WHERE wallet = $1 AND mint = $2
		ORDER BY timestamp_ms ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet, mint)
	if err != nil {
		return nil, fmt.Errorf("query trades by wallet and mint: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByWalletGrouped retrieves a wallet's trades keyed by mint.
func (s *TradeStore) GetByWalletGrouped(ctx context.Context, wallet string) (map[string][]*domain.Trade, error) {
	trades, err := s.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]*domain.Trade)
	for _, t := range trades {
		grouped[t.Mint] = append(grouped[t.Mint], t)
	}
	return grouped, nil
}

// scanTrades scans query rows into trades.
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade
	for rows.Next() {
		t := &domain.Trade{}
		err := rows.Scan(
			&t.TradeID, &t.Wallet, &t.Mint, &t.Symbol, &t.TxSignature,
			&t.Side, &t.Amount, &t.PriceUsd, &t.Timestamp, &t.Program,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return trades, nil
}
