package solana

import "context"

// WSClient defines the Solana WebSocket subscription surface.
type WSClient interface {
	// SubscribeWallet subscribes to log notifications for transactions
	// that mention the given wallet address.
	SubscribeWallet(ctx context.Context, wallet string) (<-chan LogNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// LogNotification represents a logs subscription message.
type LogNotification struct {
	Signature string
	Slot      int64
	Logs      []string
	Err       interface{}
}
