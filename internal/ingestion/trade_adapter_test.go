package ingestion

import (
	"testing"

	"wallet-behavior-lab/internal/domain"
)

func validRawTrade() *RawTrade {
	return &RawTrade{
		Wallet:      testWallet(1),
		Mint:        testWallet(2),
		Symbol:      " bonk ",
		TxSignature: "sig-001",
		Side:        "BUY",
		Amount:      1000,
		PriceUsd:    0.0075,
		Timestamp:   1704067200000,
		Program:     domain.ProgramPumpFun,
	}
}

func TestAdaptTrade(t *testing.T) {
	trade, err := AdaptTrade(validRawTrade())
	if err != nil {
		t.Fatalf("AdaptTrade: %v", err)
	}

	if trade.Side != domain.TradeSideBuy {
		t.Errorf("expected normalized side buy, got %s", trade.Side)
	}
	if trade.Symbol != "BONK" {
		t.Errorf("expected symbol BONK, got %q", trade.Symbol)
	}
	if trade.Program != domain.ProgramPumpFun {
		t.Errorf("expected program kept, got %q", trade.Program)
	}
	if len(trade.TradeID) != 64 {
		t.Errorf("expected 64-char trade id, got %d", len(trade.TradeID))
	}
}

func TestAdaptTrade_DeterministicID(t *testing.T) {
	a, err := AdaptTrade(validRawTrade())
	if err != nil {
		t.Fatalf("AdaptTrade: %v", err)
	}
	b, err := AdaptTrade(validRawTrade())
	if err != nil {
		t.Fatalf("AdaptTrade: %v", err)
	}
	if a.TradeID != b.TradeID {
		t.Error("same input must produce the same trade id")
	}

	other := validRawTrade()
	other.Side = "sell"
	c, err := AdaptTrade(other)
	if err != nil {
		t.Fatalf("AdaptTrade: %v", err)
	}
	if c.TradeID == a.TradeID {
		t.Error("different side must change the trade id")
	}
}

func TestAdaptTrade_SideAliases(t *testing.T) {
	cases := map[string]string{
		"buy":  domain.TradeSideBuy,
		"Buy":  domain.TradeSideBuy,
		"b":    domain.TradeSideBuy,
		"SELL": domain.TradeSideSell,
		"s":    domain.TradeSideSell,
	}
	for in, want := range cases {
		raw := validRawTrade()
		raw.Side = in
		trade, err := AdaptTrade(raw)
		if err != nil {
			t.Fatalf("side %q: %v", in, err)
		}
		if trade.Side != want {
			t.Errorf("side %q: expected %s, got %s", in, want, trade.Side)
		}
	}
}

func TestAdaptTrade_UnknownProgramUnattributed(t *testing.T) {
	raw := validRawTrade()
	raw.Program = "SomeUnknownProgramId11111111111111111111111"

	trade, err := AdaptTrade(raw)
	if err != nil {
		t.Fatalf("AdaptTrade: %v", err)
	}
	if trade.Program != "" {
		t.Errorf("expected empty program for unknown venue, got %q", trade.Program)
	}
}

func TestAdaptTrade_EpochSecondsScaled(t *testing.T) {
	raw := validRawTrade()
	raw.Timestamp = 1704067200 // seconds

	trade, err := AdaptTrade(raw)
	if err != nil {
		t.Fatalf("AdaptTrade: %v", err)
	}
	if trade.Timestamp != 1704067200000 {
		t.Errorf("expected ms epoch, got %d", trade.Timestamp)
	}
}

func TestAdaptTrade_Rejections(t *testing.T) {
	cases := map[string]func(*RawTrade){
		"nil":              nil,
		"bad wallet":       func(r *RawTrade) { r.Wallet = "not-base58!" },
		"off-curve wallet": func(r *RawTrade) { r.Wallet = offCurveAddress(t) },
		"bad mint":         func(r *RawTrade) { r.Mint = "xyz" },
		"no signature":     func(r *RawTrade) { r.TxSignature = "" },
		"bad side":         func(r *RawTrade) { r.Side = "hold" },
		"negative amount":  func(r *RawTrade) { r.Amount = -1 },
		"negative price":   func(r *RawTrade) { r.PriceUsd = -0.1 },
		"no timestamp":     func(r *RawTrade) { r.Timestamp = 0 },
	}

	for name, mutate := range cases {
		var raw *RawTrade
		if mutate != nil {
			raw = validRawTrade()
			mutate(raw)
		}
		if _, err := AdaptTrade(raw); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestAdaptTrades_DropsMalformed(t *testing.T) {
	bad := validRawTrade()
	bad.Side = "hold"

	trades, dropped := AdaptTrades([]*RawTrade{validRawTrade(), bad, validRawTrade()})
	if len(trades) != 2 {
		t.Errorf("expected 2 trades, got %d", len(trades))
	}
	if dropped != 1 {
		t.Errorf("expected 1 dropped, got %d", dropped)
	}
}
