package ingestion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/solana"
	"wallet-behavior-lab/internal/storage/memory"
)

// fakeRPC serves a canned signature page and transaction set.
type fakeRPC struct {
	sigs map[string][]solana.SignatureInfo // keyed by address
	txs  map[string]*solana.Transaction    // keyed by signature
}

func (f *fakeRPC) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	if opts != nil && opts.Before != "" {
		return nil, nil // single page
	}
	return f.sigs[address], nil
}

func (f *fakeRPC) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	return f.txs[signature], nil
}

func (f *fakeRPC) GetHealth(context.Context) error { return nil }

func pumpFunBuyTx(sig, mint string, blockTime int64) *solana.Transaction {
	return &solana.Transaction{
		Signature: sig,
		BlockTime: blockTime,
		Meta: &solana.TransactionMeta{
			LogMessages: []string{
				"Program " + domain.ProgramPumpFun + " invoke [1]",
				"Program log: mint=" + mint + " token_amount=1000000000 sol_amount=50000000",
				"Program log: Instruction: Buy",
				"Program " + domain.ProgramPumpFun + " success",
			},
		},
	}
}

func TestHarvester_HarvestTrades(t *testing.T) {
	wallet := testWallet(1)
	mint := testWallet(2)
	bt := int64(1704067200)

	failedBt := bt + 60
	rpc := &fakeRPC{
		sigs: map[string][]solana.SignatureInfo{
			wallet: {
				{Signature: "sig-1", Slot: 100, BlockTime: &bt},
				{Signature: "sig-failed", Slot: 101, BlockTime: &failedBt, Err: "InstructionError"},
				{Signature: "sig-no-time", Slot: 102},
			},
		},
		txs: map[string]*solana.Transaction{
			"sig-1": pumpFunBuyTx("sig-1", mint, bt),
		},
	}

	trades := memory.NewTradeStore()
	h := NewHarvester(rpc, trades, memory.NewEquityPointStore(), HarvesterConfig{SolPriceUsd: 150})

	n, err := h.HarvestTrades(context.Background(), wallet)
	if err != nil {
		t.Fatalf("HarvestTrades: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 inserted trade, got %d", n)
	}

	stored, err := trades.GetByWallet(context.Background(), wallet)
	if err != nil {
		t.Fatalf("GetByWallet: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored trade, got %d", len(stored))
	}

	trade := stored[0]
	if trade.Mint != mint {
		t.Errorf("expected mint %s, got %s", mint, trade.Mint)
	}
	if trade.Side != domain.TradeSideBuy {
		t.Errorf("expected buy, got %s", trade.Side)
	}
	if trade.Amount != 1000 {
		t.Errorf("expected 1000 tokens, got %f", trade.Amount)
	}
	// 0.05 SOL * 150 USD / 1000 tokens
	if trade.PriceUsd < 0.00749 || trade.PriceUsd > 0.00751 {
		t.Errorf("expected price ~0.0075, got %f", trade.PriceUsd)
	}
	if trade.Timestamp != bt*1000 {
		t.Errorf("expected ms timestamp %d, got %d", bt*1000, trade.Timestamp)
	}
	if trade.Program != domain.ProgramPumpFun {
		t.Errorf("expected pump.fun venue, got %s", trade.Program)
	}
}

func TestHarvester_HarvestTradesIdempotent(t *testing.T) {
	wallet := testWallet(1)
	mint := testWallet(2)
	bt := int64(1704067200)

	rpc := &fakeRPC{
		sigs: map[string][]solana.SignatureInfo{
			wallet: {{Signature: "sig-1", Slot: 100, BlockTime: &bt}},
		},
		txs: map[string]*solana.Transaction{
			"sig-1": pumpFunBuyTx("sig-1", mint, bt),
		},
	}

	trades := memory.NewTradeStore()
	h := NewHarvester(rpc, trades, memory.NewEquityPointStore(), HarvesterConfig{SolPriceUsd: 150})

	if _, err := h.HarvestTrades(context.Background(), wallet); err != nil {
		t.Fatalf("first harvest: %v", err)
	}

	n, err := h.HarvestTrades(context.Background(), wallet)
	if err != nil {
		t.Fatalf("second harvest: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 new trades on re-harvest, got %d", n)
	}

	stored, _ := trades.GetByWallet(context.Background(), wallet)
	if len(stored) != 1 {
		t.Errorf("expected 1 stored trade, got %d", len(stored))
	}
}

func TestHarvester_HarvestTradesRejectsBadWallet(t *testing.T) {
	h := NewHarvester(&fakeRPC{}, memory.NewTradeStore(), memory.NewEquityPointStore(), HarvesterConfig{})

	if _, err := h.HarvestTrades(context.Background(), "bogus"); err == nil {
		t.Fatal("expected error for invalid wallet")
	}
}

func TestHarvester_HarvestEquity(t *testing.T) {
	wallet := testWallet(1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("wallet"); got != wallet {
			t.Errorf("expected wallet query %s, got %s", wallet, got)
		}
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"date": 1704067200000, "value": 100.0},
			{"day": 1704153600000, "equity": 110.0},
			{"date": 1704240000000, "pnl_pct": 20.0},
		})
	}))
	defer server.Close()

	equity := memory.NewEquityPointStore()
	h := NewHarvester(&fakeRPC{}, memory.NewTradeStore(), equity, HarvesterConfig{EquityURL: server.URL})

	n, err := h.HarvestEquity(context.Background(), wallet)
	if err != nil {
		t.Fatalf("HarvestEquity: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 points, got %d", n)
	}

	// Second run inserts nothing new
	n, err = h.HarvestEquity(context.Background(), wallet)
	if err != nil {
		t.Fatalf("second HarvestEquity: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 new points, got %d", n)
	}

	stored, err := equity.GetByWallet(context.Background(), wallet)
	if err != nil {
		t.Fatalf("GetByWallet: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 stored points, got %d", len(stored))
	}
	if stored[0].Value == nil || *stored[0].Value != 100 {
		t.Errorf("expected first value 100, got %v", stored[0].Value)
	}
	if stored[2].Value != nil || stored[2].PnlPct == nil {
		t.Errorf("expected pnl-only third point, got %+v", stored[2])
	}
}

func TestHarvester_HarvestEquityNoProvider(t *testing.T) {
	h := NewHarvester(&fakeRPC{}, memory.NewTradeStore(), memory.NewEquityPointStore(), HarvesterConfig{})

	if _, err := h.HarvestEquity(context.Background(), testWallet(1)); err == nil {
		t.Fatal("expected error without equity provider")
	}
}
