package stream

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"tradelog/internal/logsink"
	"tradelog/internal/metrics"
	"tradelog/pkg/xerr"
)

// State is the lifecycle position of a Session.
type State int32

const (
	StateCreated State = iota
	StateConnected
	StateStreaming
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateConnected:
		return "connected"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrSessionClosed is returned by Run on a session that already ran.
var ErrSessionClosed = errors.New("stream session already closed")

// Options are the collaborators a Session drives.
type Options struct {
	Feed      Feed
	Sink      *logsink.Sink
	Formatter *Formatter
	Archive   Archive // optional
	Logger    *zap.Logger
}

// Session streams one symbol's trades through the formatter into the sink.
// A Session runs once; a new run needs a new Session.
type Session struct {
	symbol  string
	modeArg string
	opts    Options
	logger  *zap.Logger

	state   atomic.Int32
	started atomic.Bool
}

// NewSession holds symbol and the unvalidated filter argument. The filter
// is checked when Run starts.
func NewSession(symbol, modeArg string, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		symbol:  symbol,
		modeArg: modeArg,
		opts:    opts,
		logger:  logger.With(zap.String("symbol", symbol)),
	}
}

func (s *Session) Symbol() string { return s.symbol }

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
	s.logger.Debug("session state", zap.Stringer("state", st))
}

// Run validates the filter, subscribes, and processes trades one at a time
// until ctx is cancelled or an error ends the session. Cancellation returns
// nil. The session is Closed when Run returns.
func (s *Session) Run(ctx context.Context) (err error) {
	if !s.started.CompareAndSwap(false, true) {
		return ErrSessionClosed
	}
	defer func() {
		s.setState(StateClosed)
		if err != nil {
			metrics.SessionErrorsTotal.WithLabelValues(xerr.KindOf(err).String()).Inc()
			s.logger.Error("session ended", zap.Error(err))
		} else {
			s.logger.Info("session ended")
		}
	}()

	mode, err := ParseFilterMode(s.modeArg)
	if err != nil {
		return err
	}

	sub, err := s.opts.Feed.Subscribe(ctx, s.symbol)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return feedError("subscribe", err)
	}
	s.setState(StateConnected)
	defer func() {
		if cerr := sub.Close(); cerr != nil {
			s.logger.Warn("failed to close subscription", zap.Error(cerr))
		}
	}()

	s.setState(StateStreaming)
	metrics.SessionsActive.Inc()
	defer metrics.SessionsActive.Dec()
	s.logger.Info("streaming started", zap.Stringer("mode", mode))

	for {
		ev, err := sub.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return feedError("receive", err)
		}
		if err := s.handle(ctx, mode, ev); err != nil {
			return err
		}
	}
}

// handle formats, persists and reports a single trade.
func (s *Session) handle(ctx context.Context, mode FilterMode, ev TradeEvent) error {
	metrics.EventsTotal.WithLabelValues(s.symbol, mode.String()).Inc()

	rec, err := s.opts.Formatter.Format(ev, mode)
	if err != nil {
		return fmt.Errorf("format trade %d: %w", ev.TradeID, err)
	}

	if err := s.opts.Sink.AppendAll(s.symbol, rec.Fragments); err != nil {
		return fmt.Errorf("append trade %d: %w", ev.TradeID, err)
	}
	for _, f := range rec.Fragments {
		metrics.FragmentsWrittenTotal.WithLabelValues(string(f.Label)).Inc()
	}

	if s.opts.Archive != nil {
		if err := s.opts.Archive.ArchiveTrade(ctx, ev); err != nil {
			return xerr.Newf(xerr.KindIO, err, "archive trade %d", ev.TradeID)
		}
	}

	s.logger.Info(rec.Console())
	return nil
}

// feedError keeps a kind the feed already assigned and treats the rest as I/O.
func feedError(op string, err error) error {
	if xerr.KindOf(err) != xerr.KindUnknown {
		return fmt.Errorf("%s: %w", op, err)
	}
	return xerr.New(xerr.KindIO, op, err)
}
