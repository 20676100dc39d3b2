package binance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelog/pkg/xerr"
)

const sampleTrade = `{"e":"trade","E":1622975821586,"s":"BTCUSDT","t":893630626,"p":"35999.98000000","q":"0.00029400","b":6334581192,"a":6334581308,"T":1622975821586,"m":true,"M":true}`

func TestParseTrade(t *testing.T) {
	ev, ok, err := ParseTrade([]byte(sampleTrade))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "BTCUSDT", ev.Symbol)
	assert.Equal(t, "35999.98000000", ev.Price)
	assert.Equal(t, "0.00029400", ev.Quantity)
	assert.Equal(t, int64(1622975821586), ev.EventTimeMs)
	assert.Equal(t, int64(893630626), ev.TradeID)
	assert.Equal(t, sampleTrade, string(ev.Raw))
}

func TestParseTradeSkipsOtherFrames(t *testing.T) {
	_, ok, err := ParseTrade([]byte(`{"result":null,"id":1}`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseTradeMalformed(t *testing.T) {
	_, _, err := ParseTrade([]byte(`{"e":"trade","p":`))
	assert.ErrorIs(t, err, xerr.ErrMalformedEvent)
}
