package profile

import (
	"context"
	"fmt"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/idhash"
	"wallet-behavior-lab/internal/storage"
)

// FixtureWallet is the demo wallet seeded by LoadFixtures.
const FixtureWallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

// LoadFixtures populates stores with demo data for fixture mode.
// The seeded history exercises the whole analysis path: a scale-in position
// closed at a profit, a TWAP position closed at a loss, a still-open single
// buy, and a daily equity curve with a drawdown and recovery.
func LoadFixtures(ctx context.Context, tradeStore storage.TradeStore, equityStore storage.EquityPointStore) error {
	if err := loadTrades(ctx, tradeStore); err != nil {
		return fmt.Errorf("load trade fixtures: %w", err)
	}
	if err := loadEquity(ctx, equityStore); err != nil {
		return fmt.Errorf("load equity fixtures: %w", err)
	}
	return nil
}

func loadTrades(ctx context.Context, store storage.TradeStore) error {
	const (
		mintWSOL = "So11111111111111111111111111111111111111112"
		mintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
		mintBONK = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	)

	type fixture struct {
		mint     string
		symbol   string
		side     string
		amount   float64
		priceUsd float64
		ts       int64
		program  string
	}

	fixtures := []fixture{
		// BONK: tight scale-in, fully closed at +60%
		{mintBONK, "BONK", domain.TradeSideBuy, 1000, 1.0, 1704067200000, domain.ProgramPumpFun},
		{mintBONK, "BONK", domain.TradeSideBuy, 1000, 1.1, 1704067500000, domain.ProgramPumpFun},
		{mintBONK, "BONK", domain.TradeSideBuy, 1000, 1.2, 1704067800000, domain.ProgramPumpFun},
		{mintBONK, "BONK", domain.TradeSideSell, 3000, 1.76, 1704153600000, domain.ProgramPumpFun},

		// WSOL: evenly paced accumulation over two days, closed at a loss
		{mintWSOL, "SOL", domain.TradeSideBuy, 10, 100.0, 1704240000000, domain.ProgramRaydiumAMMV4},
		{mintWSOL, "SOL", domain.TradeSideBuy, 10, 98.0, 1704326400000, domain.ProgramRaydiumAMMV4},
		{mintWSOL, "SOL", domain.TradeSideBuy, 10, 96.0, 1704412800000, domain.ProgramRaydiumAMMV4},
		{mintWSOL, "SOL", domain.TradeSideSell, 30, 90.0, 1704499200000, domain.ProgramRaydiumAMMV4},

		// USDC: single open buy, never realized
		{mintUSDC, "USDC", domain.TradeSideBuy, 500, 1.0, 1704585600000, domain.ProgramOrcaWhirlpool},
	}

	for i, f := range fixtures {
		sig := fmt.Sprintf("fixtureSig%03d", i+1)
		trade := &domain.Trade{
			TradeID:     idhash.ComputeTradeID(FixtureWallet, f.mint, sig, f.side, f.ts),
			Wallet:      FixtureWallet,
			Mint:        f.mint,
			Symbol:      f.symbol,
			TxSignature: sig,
			Side:        f.side,
			Amount:      f.amount,
			PriceUsd:    f.priceUsd,
			Timestamp:   f.ts,
			Program:     f.program,
		}
		if err := store.Insert(ctx, trade); err != nil {
			return err
		}
	}
	return nil
}

func loadEquity(ctx context.Context, store storage.EquityPointStore) error {
	const dayMs = int64(24 * 60 * 60 * 1000)
	start := int64(1704067200000) // 2024-01-01 00:00:00 UTC

	values := []float64{1000, 1150, 1600, 1400, 1100, 1250, 1700}
	points := make([]*domain.EquityPoint, len(values))
	for i, v := range values {
		value := v
		points[i] = &domain.EquityPoint{
			TimestampMs: start + int64(i)*dayMs,
			Value:       &value,
		}
	}

	return store.InsertBulk(ctx, FixtureWallet, points)
}
