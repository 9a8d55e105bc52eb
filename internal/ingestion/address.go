package ingestion

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ValidateWallet checks that an address is a plausible user wallet:
// 32 bytes of base58 that decode to a point on the ed25519 curve.
// Program derived addresses are off-curve and rejected here.
func ValidateWallet(address string) error {
	raw, err := decodeAddress(address)
	if err != nil {
		return err
	}
	if !isOnCurve(raw) {
		return fmt.Errorf("address %s is off-curve (not a wallet)", address)
	}
	return nil
}

// ValidateMint checks that an address decodes to 32 base58 bytes.
// Mints may legitimately be off-curve (bonding-curve programs derive them),
// so no curve check applies.
func ValidateMint(address string) error {
	_, err := decodeAddress(address)
	return err
}

func decodeAddress(address string) ([]byte, error) {
	if address == "" {
		return nil, fmt.Errorf("empty address")
	}
	raw, err := base58.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("decode address %s: %w", address, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("address %s decodes to %d bytes, want 32", address, len(raw))
	}
	return raw, nil
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
