package timecodec

import (
	"fmt"
	"strconv"
	"time"

	"tradelog/pkg/xerr"
)

const (
	humanLayout      = "2006-01-02 15:04:05"
	compressedLayout = "20060102150405"
)

// ErrInvalidTimestamp is returned for epoch values with fewer than 4 digits or a sign.
var ErrInvalidTimestamp = xerr.New(xerr.KindTimestamp, "invalid epoch milliseconds", nil)

// Codec renders exchange epoch-millisecond timestamps in a fixed location.
type Codec struct {
	Location *time.Location
}

// New returns a Codec for loc. A nil loc means time.Local.
func New(loc *time.Location) Codec {
	return Codec{Location: loc}
}

func (c Codec) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// split separates epochMs into whole seconds (all digits but the last three)
// and the millisecond digits (exactly the last three).
func split(epochMs int64) (int64, string, error) {
	digits := strconv.FormatInt(epochMs, 10)
	if epochMs < 0 || len(digits) < 4 {
		return 0, "", fmt.Errorf("%w: %d", ErrInvalidTimestamp, epochMs)
	}
	sec, err := strconv.ParseInt(digits[:len(digits)-3], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}
	return sec, digits[len(digits)-3:], nil
}

// ToHumanDate renders epochMs as "YYYY-MM-DD HH:MM:SS.mmm".
func (c Codec) ToHumanDate(epochMs int64) (string, error) {
	sec, ms, err := split(epochMs)
	if err != nil {
		return "", err
	}
	return time.Unix(sec, 0).In(c.loc()).Format(humanLayout) + "." + ms, nil
}

// ToCompressedDate renders epochMs as "YYYYMMDDHHMMSSmmm".
func (c Codec) ToCompressedDate(epochMs int64) (string, error) {
	sec, ms, err := split(epochMs)
	if err != nil {
		return "", err
	}
	return time.Unix(sec, 0).In(c.loc()).Format(compressedLayout) + ms, nil
}

// ParseHumanDate is the inverse of ToHumanDate.
func (c Codec) ParseHumanDate(s string) (time.Time, error) {
	return time.ParseInLocation(humanLayout+".000", s, c.loc())
}

// ParseCompressedDate is the inverse of ToCompressedDate.
func (c Codec) ParseCompressedDate(s string) (time.Time, error) {
	if len(s) != len(compressedLayout)+3 {
		return time.Time{}, fmt.Errorf("compressed date %q: want %d digits", s, len(compressedLayout)+3)
	}
	t, err := time.ParseInLocation(compressedLayout, s[:len(compressedLayout)], c.loc())
	if err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.Atoi(s[len(compressedLayout):])
	if err != nil {
		return time.Time{}, fmt.Errorf("compressed date %q: %w", s, err)
	}
	return t.Add(time.Duration(ms) * time.Millisecond), nil
}
