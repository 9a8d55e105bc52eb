package ingestion

import (
	"fmt"
	"strings"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/idhash"
)

// RawTrade is one swap row as reported by a market-data provider, before
// validation and normalization.
type RawTrade struct {
	Wallet      string  `json:"wallet"`
	Mint        string  `json:"mint"`
	Symbol      string  `json:"symbol"`
	TxSignature string  `json:"tx_signature"`
	Side        string  `json:"side"`
	Amount      float64 `json:"amount"`
	PriceUsd    float64 `json:"price_usd"`
	Timestamp   int64   `json:"timestamp"`
	Program     string  `json:"program"`
}

// knownPrograms keeps venue attribution to program IDs we can name.
var knownPrograms = map[string]struct{}{
	domain.ProgramRaydiumAMMV4:  {},
	domain.ProgramPumpFun:       {},
	domain.ProgramOrcaWhirlpool: {},
}

// AdaptTrade validates and normalizes one raw provider row into a trade
// with a deterministic trade ID.
func AdaptTrade(raw *RawTrade) (*domain.Trade, error) {
	if raw == nil {
		return nil, fmt.Errorf("nil raw trade")
	}

	if err := ValidateWallet(raw.Wallet); err != nil {
		return nil, fmt.Errorf("invalid wallet: %w", err)
	}
	if err := ValidateMint(raw.Mint); err != nil {
		return nil, fmt.Errorf("invalid mint: %w", err)
	}
	if raw.TxSignature == "" {
		return nil, fmt.Errorf("missing tx signature")
	}

	side, err := normalizeSide(raw.Side)
	if err != nil {
		return nil, err
	}

	if raw.Amount < 0 {
		return nil, fmt.Errorf("negative amount %f", raw.Amount)
	}
	if raw.PriceUsd < 0 {
		return nil, fmt.Errorf("negative price %f", raw.PriceUsd)
	}
	if raw.Timestamp <= 0 {
		return nil, fmt.Errorf("missing timestamp")
	}

	program := raw.Program
	if _, ok := knownPrograms[program]; !ok {
		// Unknown venues are kept but unattributed
		program = ""
	}

	return &domain.Trade{
		TradeID:     idhash.ComputeTradeID(raw.Wallet, raw.Mint, raw.TxSignature, side, normalizeEpoch(raw.Timestamp)),
		Wallet:      raw.Wallet,
		Mint:        raw.Mint,
		Symbol:      strings.ToUpper(strings.TrimSpace(raw.Symbol)),
		TxSignature: raw.TxSignature,
		Side:        side,
		Amount:      raw.Amount,
		PriceUsd:    raw.PriceUsd,
		Timestamp:   normalizeEpoch(raw.Timestamp),
		Program:     program,
	}, nil
}

// AdaptTrades converts a batch of raw rows, dropping rows that fail
// validation. Malformed provider data is a fact of life; the count of
// dropped rows is returned so callers can log it.
func AdaptTrades(raw []*RawTrade) (trades []*domain.Trade, dropped int) {
	for _, r := range raw {
		t, err := AdaptTrade(r)
		if err != nil {
			dropped++
			continue
		}
		trades = append(trades, t)
	}
	return trades, dropped
}

func normalizeSide(side string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(side)) {
	case "buy", "b":
		return domain.TradeSideBuy, nil
	case "sell", "s":
		return domain.TradeSideSell, nil
	default:
		return "", fmt.Errorf("unknown trade side %q", side)
	}
}
