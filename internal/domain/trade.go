package domain

// Trade represents one executed buy or sell of a mint by a wallet.
// Corresponds to wallet_trades table in PostgreSQL.
type Trade struct {
	TradeID     string  // deterministic hash, see idhash
	Wallet      string  // wallet address (base58)
	Mint        string  // token mint address (base58)
	Symbol      string  // token symbol, empty if unknown
	TxSignature string  // Solana transaction signature
	Side        string  // "buy" | "sell"
	Amount      float64 // token quantity, >= 0
	PriceUsd    float64 // execution price in USD, >= 0
	Timestamp   int64   // Unix timestamp in milliseconds
	Program     string  // DEX program that executed the swap, empty if unknown
}

// Trade side constants
const (
	TradeSideBuy  = "buy"
	TradeSideSell = "sell"
)

// Known DEX program IDs used for venue attribution.
const (
	ProgramRaydiumAMMV4  = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	ProgramPumpFun       = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
	ProgramOrcaWhirlpool = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
)

// IsBuy reports whether the trade is a buy.
func (t *Trade) IsBuy() bool {
	return t.Side == TradeSideBuy
}

// IsSell reports whether the trade is a sell.
func (t *Trade) IsSell() bool {
	return t.Side == TradeSideSell
}
