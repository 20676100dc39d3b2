package stream

import "context"

// TradeEvent is one trade received from the exchange feed.
type TradeEvent struct {
	Symbol      string // e.g., "BTCUSDT"
	Price       string // decimal string, e.g., "35999.98000000"
	Quantity    string // decimal string
	EventTimeMs int64  // trade time in epoch milliseconds
	TradeID     int64
	Raw         []byte // the message exactly as received
}

// Feed opens a trade subscription for one symbol. Connection handshake and
// transport belong to the Feed implementation.
type Feed interface {
	Subscribe(ctx context.Context, symbol string) (Subscription, error)
}

// Subscription yields trades in exchange order. Recv blocks until the next
// trade arrives, ctx is done, or the feed fails.
type Subscription interface {
	Recv(ctx context.Context) (TradeEvent, error)
	Close() error
}

// Archive mirrors received trades to secondary storage.
type Archive interface {
	ArchiveTrade(ctx context.Context, ev TradeEvent) error
}
