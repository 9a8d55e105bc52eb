package idhash

import (
	"testing"
)

func TestComputeTradeID(t *testing.T) {
	tests := []struct {
		name        string
		wallet      string
		mint        string
		txSignature string
		side        string
		timestamp   int64
		wantLen     int // hash length should be 64
	}{
		{
			name:        "buy trade",
			wallet:      "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
			mint:        "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			txSignature: "5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7",
			side:        "buy",
			timestamp:   1704067234567,
			wantLen:     64,
		},
		{
			name:        "sell trade",
			wallet:      "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
			mint:        "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			txSignature: "2xNweLHLqrbx4zo1waDvgWJHgsUpPj8Y8icbAFeR4a8i5A41g4kBNokCQdJAs9BSBvT6aKb6dttnAWTCbGWvrcvY",
			side:        "sell",
			timestamp:   1704067300000,
			wantLen:     64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTradeID(tt.wallet, tt.mint, tt.txSignature, tt.side, tt.timestamp)

			if len(got) != tt.wantLen {
				t.Errorf("ComputeTradeID() length = %d, want %d", len(got), tt.wantLen)
			}

			// Verify determinism: same inputs should produce same output
			got2 := ComputeTradeID(tt.wallet, tt.mint, tt.txSignature, tt.side, tt.timestamp)
			if got != got2 {
				t.Errorf("ComputeTradeID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeTradeID_DistinctInputs(t *testing.T) {
	base := ComputeTradeID("wallet", "mint", "sig", "buy", 1704067234567)

	variants := []string{
		ComputeTradeID("wallet2", "mint", "sig", "buy", 1704067234567),
		ComputeTradeID("wallet", "mint2", "sig", "buy", 1704067234567),
		ComputeTradeID("wallet", "mint", "sig2", "buy", 1704067234567),
		ComputeTradeID("wallet", "mint", "sig", "sell", 1704067234567),
		ComputeTradeID("wallet", "mint", "sig", "buy", 1704067234568),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base hash", i)
		}
	}
}
