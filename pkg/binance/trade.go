package binance

import (
	"github.com/segmentio/encoding/json"

	"tradelog/internal/stream"
	"tradelog/pkg/xerr"
)

// ParseTrade decodes one frame of the trade stream. ok is false for frames
// that are valid JSON but not trades (e.g., subscription acks).
func ParseTrade(b []byte) (ev stream.TradeEvent, ok bool, err error) {
	var msg TradeMessage
	if err := json.Unmarshal(b, &msg); err != nil {
		return stream.TradeEvent{}, false, xerr.New(xerr.KindMalformedEvent, "decode trade frame", err)
	}
	if msg.EventType != "trade" {
		return stream.TradeEvent{}, false, nil
	}

	raw := make([]byte, len(b))
	copy(raw, b)

	return stream.TradeEvent{
		Symbol:      msg.Symbol,
		Price:       msg.Price,
		Quantity:    msg.Quantity,
		EventTimeMs: msg.TradeTime,
		TradeID:     msg.TradeID,
		Raw:         raw,
	}, true, nil
}
