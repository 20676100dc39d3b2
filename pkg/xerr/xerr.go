package xerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers (and the operator) can tell causes apart.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindTimestamp
	KindIO
	KindDatasetUnavailable
	KindDatasetCorrupt
	KindMalformedEvent
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindTimestamp:
		return "timestamp error"
	case KindIO:
		return "io error"
	case KindDatasetUnavailable:
		return "dataset unavailable"
	case KindDatasetCorrupt:
		return "dataset corrupt"
	case KindMalformedEvent:
		return "malformed event"
	default:
		return "unknown error"
	}
}

// Error is a kinded error. Msg and Err are optional.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrConfiguration      = &Error{Kind: KindConfiguration}
	ErrTimestamp          = &Error{Kind: KindTimestamp}
	ErrIO                 = &Error{Kind: KindIO}
	ErrDatasetUnavailable = &Error{Kind: KindDatasetUnavailable}
	ErrDatasetCorrupt     = &Error{Kind: KindDatasetCorrupt}
	ErrMalformedEvent     = &Error{Kind: KindMalformedEvent}
)

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is a bare sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Msg != "" || t.Err != nil {
		return e == t
	}
	return e.Kind == t.Kind
}

func New(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Newf(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the outermost kind found in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
