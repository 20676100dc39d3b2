package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelog/pkg/xerr"
)

func newExchangeInfoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/exchangeInfo" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("symbol") {
		case "BTCUSDT":
			_, _ = w.Write([]byte(`{"timezone":"UTC","serverTime":1622975821586,"symbols":[{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT"}]}`))
		case "LUNAUSDT":
			_, _ = w.Write([]byte(`{"timezone":"UTC","symbols":[{"symbol":"LUNAUSDT","status":"BREAK"}]}`))
		case "BOOM":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// go test -v --run TestValidateSymbol
func TestValidateSymbol(t *testing.T) {
	srv := newExchangeInfoServer(t)
	client := NewRESTClient(srv.URL, 5*time.Second)

	// Context with timeout for safety
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.ValidateSymbol(ctx, "BTCUSDT"))

	err := client.ValidateSymbol(ctx, "NOPEUSDT")
	assert.ErrorIs(t, err, xerr.ErrConfiguration)
	assert.Contains(t, err.Error(), "Invalid symbol.")

	err = client.ValidateSymbol(ctx, "LUNAUSDT")
	assert.ErrorIs(t, err, xerr.ErrConfiguration)
	assert.Contains(t, err.Error(), "BREAK")

	assert.ErrorIs(t, client.ValidateSymbol(ctx, "BOOM"), xerr.ErrIO)
}
