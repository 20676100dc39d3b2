package binance

// TradeMessage is a raw payload from the <symbol>@trade stream.
type TradeMessage struct {
	EventType     string `json:"e"` // "trade"
	EventTime     int64  `json:"E"` // Event time (ms since epoch)
	Symbol        string `json:"s"` // e.g., "BTCUSDT"
	TradeID       int64  `json:"t"`
	Price         string `json:"p"` // e.g., "35999.98000000"
	Quantity      string `json:"q"`
	BuyerOrderID  int64  `json:"b"` // absent on newer streams
	SellerOrderID int64  `json:"a"` // absent on newer streams
	TradeTime     int64  `json:"T"` // Trade time (ms since epoch)
	IsBuyerMaker  bool   `json:"m"`
	Ignore        bool   `json:"M"`
}

// APIError is the error body Binance returns on non-2xx REST responses.
type APIError struct {
	Code int    `json:"code"` // e.g., -1121 for "Invalid symbol."
	Msg  string `json:"msg"`
}

type ExchangeInfoResponse struct {
	Timezone   string `json:"timezone"`
	ServerTime int64  `json:"serverTime"`
	Symbols    []struct {
		Symbol     string `json:"symbol"`     // e.g., "BTCUSDT"
		Status     string `json:"status"`     // e.g., "TRADING", "BREAK"
		BaseAsset  string `json:"baseAsset"`  // e.g., "BTC"
		QuoteAsset string `json:"quoteAsset"` // e.g., "USDT"
		// ... extra
	} `json:"symbols"`
}
