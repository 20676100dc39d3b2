package logsink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelog/pkg/xerr"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		label Label
		want  string
	}{
		{LabelRaw, "BTCUSDT_DATA_RAW.txt"},
		{LabelHuman, "BTCUSDT_DATA_HUMAN.txt"},
		{LabelChartX, "BTCUSDT_DATA_CHART_X.txt"},
		{LabelChartY, "BTCUSDT_DATA_CHART_Y.txt"},
	}
	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			got, err := FileName("BTCUSDT", tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, tt.label.IsValid())
		})
	}

	_, err := FileName("BTCUSDT", Label("CHART_Z"))
	assert.ErrorIs(t, err, xerr.ErrConfiguration)
	_, err = FileName("", LabelRaw)
	assert.ErrorIs(t, err, xerr.ErrConfiguration)
}

// go test -v --run TestAppendIsAppendOnly
func TestAppendIsAppendOnly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s := New(dir)

	require.NoError(t, s.Append("BTCUSDT", LabelChartY, "100.00 "))
	require.NoError(t, s.Append("BTCUSDT", LabelChartY, "101.50 "))

	b, err := os.ReadFile(filepath.Join(dir, "BTCUSDT_DATA_CHART_Y.txt"))
	require.NoError(t, err)
	assert.Equal(t, "100.00 101.50 ", string(b))
}

func TestAppendAllWritesEveryEntry(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	err := s.AppendAll("ETHUSDT", []Entry{
		{Label: LabelChartY, Text: "3052.18 "},
		{Label: LabelChartX, Text: "20210606053701586 "},
	})
	require.NoError(t, err)

	y, _ := os.ReadFile(filepath.Join(dir, "ETHUSDT_DATA_CHART_Y.txt"))
	x, _ := os.ReadFile(filepath.Join(dir, "ETHUSDT_DATA_CHART_X.txt"))
	assert.Equal(t, "3052.18 ", string(y))
	assert.Equal(t, "20210606053701586 ", string(x))
}

// go test -v --run TestAppendAllRollsBackOnFailure
func TestAppendAllRollsBackOnFailure(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.Append("BTCUSDT", LabelChartY, "100.00 "))

	// A directory where the X log should be makes the second write fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "BTCUSDT_DATA_CHART_X.txt"), 0o755))

	err := s.AppendAll("BTCUSDT", []Entry{
		{Label: LabelChartY, Text: "101.50 "},
		{Label: LabelChartX, Text: "20210606053701586 "},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, xerr.ErrIO)

	y, err := os.ReadFile(filepath.Join(dir, "BTCUSDT_DATA_CHART_Y.txt"))
	require.NoError(t, err)
	assert.Equal(t, "100.00 ", string(y), "Y fragment must not outlive its failed X sibling")
}

func TestAppendUnknownLabelWritesNothing(t *testing.T) {
	dir := t.TempDir()
	err := New(dir).Append("BTCUSDT", Label("OTHER"), "x")
	assert.ErrorIs(t, err, xerr.ErrConfiguration)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
