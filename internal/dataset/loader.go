package dataset

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"tradelog/internal/logsink"
	"tradelog/pkg/xerr"
)

// ChartDataset is the (date, price) series rebuilt from the chart logs.
// X[i] and Y[i] come from the same trade; order is append order.
type ChartDataset struct {
	X []float64 // compressed dates read as numbers
	Y []float64 // prices
}

func (d ChartDataset) Len() int {
	return len(d.Y)
}

// Loader reads chart logs written by logsink. It keeps no state between calls
// and assumes no live writer on the same logs.
type Loader struct {
	sink *logsink.Sink
}

func NewLoader(dir string) *Loader {
	return &Loader{sink: logsink.New(dir)}
}

// Load rebuilds the dataset for symbol. A missing or empty log fails with
// DatasetUnavailable; an unparseable token or X/Y length mismatch fails with
// DatasetCorrupt.
func (l *Loader) Load(symbol string) (ChartDataset, error) {
	x, err := l.readAxis(symbol, logsink.LabelChartX)
	if err != nil {
		return ChartDataset{}, err
	}
	y, err := l.readAxis(symbol, logsink.LabelChartY)
	if err != nil {
		return ChartDataset{}, err
	}

	if len(x) == 0 && len(y) == 0 {
		return ChartDataset{}, xerr.Newf(xerr.KindDatasetUnavailable, nil, "no chart data for %s", symbol)
	}
	// A crash between the Y and X appends leaves one axis longer.
	if len(x) != len(y) {
		return ChartDataset{}, xerr.Newf(xerr.KindDatasetCorrupt, nil,
			"%s: %d dates but %d prices", symbol, len(x), len(y))
	}

	return ChartDataset{X: x, Y: y}, nil
}

func (l *Loader) readAxis(symbol string, label logsink.Label) ([]float64, error) {
	path, err := l.sink.Path(symbol, label)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, xerr.New(xerr.KindDatasetUnavailable, path, err)
		}
		return nil, xerr.New(xerr.KindIO, "read "+path, err)
	}

	tokens := strings.Fields(string(b))
	out := make([]float64, 0, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, xerr.Newf(xerr.KindDatasetCorrupt, err, "%s token %d %q", path, i, tok)
		}
		out = append(out, v)
	}
	return out, nil
}
