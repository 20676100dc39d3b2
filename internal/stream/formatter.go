package stream

import (
	"strings"

	"github.com/shopspring/decimal"

	"tradelog/internal/logsink"
	"tradelog/internal/timecodec"
	"tradelog/pkg/xerr"
)

// trimWidth is how many trailing characters the exchange's 8-decimal prices lose.
const trimWidth = 6

// Fragment is one piece of formatted output bound for one log.
type Fragment = logsink.Entry

// FormattedRecord is everything one event produces under one mode.
// Compressed records carry a CHART_Y and a CHART_X fragment for the same event.
type FormattedRecord struct {
	Fragments []Fragment
}

// Console is the operator-facing line for the record.
func (r FormattedRecord) Console() string {
	switch len(r.Fragments) {
	case 0:
		return ""
	case 1:
		return strings.TrimRight(r.Fragments[0].Text, "\n")
	}
	parts := make([]string, 0, len(r.Fragments))
	for _, f := range r.Fragments {
		parts = append(parts, strings.TrimSpace(f.Text))
	}
	return strings.Join(parts, "+")
}

type Formatter struct {
	Codec timecodec.Codec
}

func NewFormatter(codec timecodec.Codec) *Formatter {
	return &Formatter{Codec: codec}
}

// Format maps ev to its output fragments under mode.
func (f *Formatter) Format(ev TradeEvent, mode FilterMode) (FormattedRecord, error) {
	switch mode {
	case ModeRaw:
		return FormattedRecord{Fragments: []Fragment{
			{Label: logsink.LabelRaw, Text: string(ev.Raw) + "\n"},
		}}, nil

	case ModeHuman:
		price, err := TrimPrice(ev.Price)
		if err != nil {
			return FormattedRecord{}, err
		}
		date, err := f.Codec.ToHumanDate(ev.EventTimeMs)
		if err != nil {
			return FormattedRecord{}, err
		}
		return FormattedRecord{Fragments: []Fragment{
			{Label: logsink.LabelHuman, Text: "PRICE:  " + price + "  TIME:  " + date + "\n"},
		}}, nil

	case ModeCompressed:
		price, err := TrimPrice(ev.Price)
		if err != nil {
			return FormattedRecord{}, err
		}
		date, err := f.Codec.ToCompressedDate(ev.EventTimeMs)
		if err != nil {
			return FormattedRecord{}, err
		}
		return FormattedRecord{Fragments: []Fragment{
			{Label: logsink.LabelChartY, Text: price + " "},
			{Label: logsink.LabelChartX, Text: date + " "},
		}}, nil
	}

	return FormattedRecord{}, xerr.Newf(xerr.KindConfiguration, nil, "invalid filter mode %d", int(mode))
}

// TrimPrice drops the final six characters of a price whose fractional part
// is longer than six digits. Shorter fractions are returned unchanged, so
// trimmed prices stay stable. This is a verbatim cut, not rounding.
func TrimPrice(price string) (string, error) {
	if _, err := decimal.NewFromString(price); err != nil {
		return "", xerr.Newf(xerr.KindMalformedEvent, err, "price %q is not a decimal", price)
	}
	dot := strings.IndexByte(price, '.')
	if dot < 0 || len(price)-dot-1 <= trimWidth {
		return price, nil
	}
	return price[:len(price)-trimWidth], nil
}
