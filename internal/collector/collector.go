package collector

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tradelog/internal/chart"
	"tradelog/internal/dataset"
	"tradelog/internal/logsink"
	"tradelog/internal/stream"
	"tradelog/pkg/xerr"
)

// SymbolValidator checks a symbol against the exchange before streaming.
type SymbolValidator interface {
	ValidateSymbol(ctx context.Context, symbol string) error
}

type Options struct {
	Symbols []string
	Filter  string

	Feed            stream.Feed
	Validator       SymbolValidator // optional
	ValidateTimeout time.Duration
	Sink            *logsink.Sink
	Formatter       *stream.Formatter
	Archive         stream.Archive // optional
	Logger          *zap.Logger

	// OnSession, when set, sees every session before it runs.
	OnSession func(*stream.Session)
}

// Run streams every symbol in its own session until ctx ends or each
// session stops. Sessions are independent: one failing leaves the others
// running. The returned error combines every session's failure.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Reject a bad filter before touching the network.
	if _, err := stream.ParseFilterMode(opts.Filter); err != nil {
		return err
	}

	symbols := NormalizeSymbols(opts.Symbols)
	if len(symbols) == 0 {
		return xerr.New(xerr.KindConfiguration, "no symbols to stream", nil)
	}

	if opts.Validator != nil {
		if err := validateAll(ctx, opts.Validator, symbols, opts.ValidateTimeout); err != nil {
			return err
		}
		logger.Info("validated symbols", zap.Strings("symbols", symbols))
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	for _, symbol := range symbols {
		session := stream.NewSession(symbol, opts.Filter, stream.Options{
			Feed:      opts.Feed,
			Sink:      opts.Sink,
			Formatter: opts.Formatter,
			Archive:   opts.Archive,
			Logger:    logger,
		})
		if opts.OnSession != nil {
			opts.OnSession(session)
		}

		g.Go(func() error {
			if err := session.Run(ctx); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errs
}

func validateAll(ctx context.Context, v SymbolValidator, symbols []string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(5)
	for _, symbol := range symbols {
		g.Go(func() error {
			return v.ValidateSymbol(gctx, symbol)
		})
	}
	return g.Wait()
}

// NormalizeSymbols upper-cases, trims and de-duplicates symbols, keeping
// first-seen order. Comma-separated entries are split.
func NormalizeSymbols(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, s := range strings.Split(raw, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Chart reconstructs symbol's dataset from its logs and renders it.
// Nothing is rendered when the logs cannot be loaded.
func Chart(loader *dataset.Loader, p chart.Plotter, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return xerr.New(xerr.KindConfiguration, "symbol required", nil)
	}

	ds, err := loader.Load(symbol)
	if err != nil {
		return err
	}
	if err := p.Bar(symbol, ds.X, ds.Y); err != nil {
		return xerr.New(xerr.KindIO, "render chart", err)
	}
	return nil
}
