package stream

import (
	"strconv"
	"strings"

	"tradelog/pkg/xerr"
)

// FilterMode selects the output representation of a session.
type FilterMode int

const (
	ModeRaw        FilterMode = 0
	ModeHuman      FilterMode = 1
	ModeCompressed FilterMode = 2
)

var modeNames = map[FilterMode]string{
	ModeRaw:        "raw",
	ModeHuman:      "human",
	ModeCompressed: "compressed",
}

func (m FilterMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "invalid(" + strconv.Itoa(int(m)) + ")"
}

// IsValid checks if the FilterMode is one of the three known modes
func (m FilterMode) IsValid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseFilterMode accepts "0", "1" or "2". Anything else is a configuration error.
func ParseFilterMode(s string) (FilterMode, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, xerr.Newf(xerr.KindConfiguration, nil, "invalid filter %q: want 0, 1 or 2", s)
	}
	m := FilterMode(n)
	if !m.IsValid() {
		return 0, xerr.Newf(xerr.KindConfiguration, nil, "invalid filter %q: want 0, 1 or 2", s)
	}
	return m, nil
}
