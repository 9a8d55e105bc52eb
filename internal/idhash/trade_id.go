// Package idhash computes deterministic identifiers so repeated harvests of
// the same wallet history stay idempotent in storage.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(wallet|mint|tx_signature|side|timestamp)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(wallet, mint, txSignature, side string, timestamp int64) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%d",
		wallet,
		mint,
		txSignature,
		side,
		timestamp,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
