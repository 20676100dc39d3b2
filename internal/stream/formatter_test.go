package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelog/internal/logsink"
	"tradelog/internal/timecodec"
	"tradelog/pkg/xerr"
)

var utcMinus5 = time.FixedZone("UTC-5", -5*60*60)

const rawFrame = `{"e":"trade","E":1622975821586,"s":"BTCUSDT","t":893630626,"p":"35999.98000000","q":"0.00029400","b":6334581192,"a":6334581308,"T":1622975821586,"m":true,"M":true}`

func sampleEvent() TradeEvent {
	return TradeEvent{
		Symbol:      "BTCUSDT",
		Price:       "35999.98000000",
		Quantity:    "0.00029400",
		EventTimeMs: 1622975821586,
		TradeID:     893630626,
		Raw:         []byte(rawFrame),
	}
}

func TestFormatRaw(t *testing.T) {
	rec, err := NewFormatter(timecodec.New(utcMinus5)).Format(sampleEvent(), ModeRaw)
	require.NoError(t, err)
	require.Len(t, rec.Fragments, 1)
	assert.Equal(t, logsink.LabelRaw, rec.Fragments[0].Label)
	assert.Equal(t, rawFrame+"\n", rec.Fragments[0].Text)
}

// go test -v --run TestFormatHuman
func TestFormatHuman(t *testing.T) {
	rec, err := NewFormatter(timecodec.New(utcMinus5)).Format(sampleEvent(), ModeHuman)
	require.NoError(t, err)
	require.Len(t, rec.Fragments, 1)
	assert.Equal(t, logsink.LabelHuman, rec.Fragments[0].Label)
	assert.Equal(t, "PRICE:  35999.98  TIME:  2021-06-06 05:37:01.586\n", rec.Fragments[0].Text)
	assert.Equal(t, "PRICE:  35999.98  TIME:  2021-06-06 05:37:01.586", rec.Console())
}

// go test -v --run TestFormatCompressed
func TestFormatCompressed(t *testing.T) {
	rec, err := NewFormatter(timecodec.New(utcMinus5)).Format(sampleEvent(), ModeCompressed)
	require.NoError(t, err)
	assert.Equal(t, []Fragment{
		{Label: logsink.LabelChartY, Text: "35999.98 "},
		{Label: logsink.LabelChartX, Text: "20210606053701586 "},
	}, rec.Fragments)
	assert.Equal(t, "35999.98+20210606053701586", rec.Console())
}

func TestFormatInvalidMode(t *testing.T) {
	_, err := NewFormatter(timecodec.New(utcMinus5)).Format(sampleEvent(), FilterMode(3))
	assert.ErrorIs(t, err, xerr.ErrConfiguration)
}

func TestFormatBadTimestamp(t *testing.T) {
	ev := sampleEvent()
	ev.EventTimeMs = 42

	f := NewFormatter(timecodec.New(utcMinus5))
	for _, mode := range []FilterMode{ModeHuman, ModeCompressed} {
		_, err := f.Format(ev, mode)
		assert.ErrorIs(t, err, xerr.ErrTimestamp, mode.String())
	}

	// raw output never looks at the timestamp
	_, err := f.Format(ev, ModeRaw)
	assert.NoError(t, err)
}

func TestTrimPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"35999.98000000", "35999.98"},
		{"0.00029400", "0.00"},
		{"100.00000000", "100.00"},
		{"35999.98", "35999.98"},
		{"100", "100"},
		{"1.123456", "1.123456"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := TrimPrice(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := TrimPrice(got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "trim must be stable on trimmed prices")
		})
	}

	_, err := TrimPrice("abc.12345678")
	assert.ErrorIs(t, err, xerr.ErrMalformedEvent)
}
