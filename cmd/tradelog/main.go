package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tradelog/config"
	"tradelog/internal/chart"
	"tradelog/internal/collector"
	"tradelog/internal/dataset"
	"tradelog/internal/logsink"
	"tradelog/internal/metrics"
	"tradelog/internal/stream"
	"tradelog/internal/timecodec"
	"tradelog/logger"
	"tradelog/pkg/binance"
	"tradelog/pkg/storage/postgres"
	"tradelog/pkg/xerr"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `usage:
  tradelog stream --symbol BTCUSDT[,ETHUSDT] --filter 0|1|2 [--config path]
  tradelog chart  --symbol BTCUSDT [--config path]
  tradelog        (interactive)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, describe(err))
		stop()
		os.Exit(1)
	}
}

// request is one operator action, from flags or the prompt.
type request struct {
	command    string // "stream" or "chart"
	configPath string
	symbols    []string
	filter     string
	dataDir    string
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	var (
		req request
		err error
	)
	if len(args) == 0 {
		req, err = prompt(in, out)
	} else {
		req, err = parseArgs(args, out)
	}
	if err != nil {
		return err
	}

	// viper config
	cfg, err := config.Load(req.configPath)
	if err != nil {
		return xerr.New(xerr.KindConfiguration, "load config", err)
	}
	if len(req.symbols) > 0 {
		cfg.Stream.Symbols = req.symbols
	}
	if req.filter != "" {
		cfg.Stream.Filter = req.filter
	}
	if req.dataDir != "" {
		cfg.Stream.DataDir = req.dataDir
		cfg.Chart.OutputDir = req.dataDir
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		return xerr.New(xerr.KindConfiguration, "create logger", err)
	}
	defer log.Sync()

	switch req.command {
	case "stream":
		return runStream(ctx, cfg, log)
	case "chart":
		return runChart(cfg, log)
	default:
		return xerr.Newf(xerr.KindConfiguration, nil, "unknown command %q", req.command)
	}
}

func parseArgs(args []string, out io.Writer) (request, error) {
	req := request{command: args[0]}

	fs := pflag.NewFlagSet(req.command, pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }
	fs.StringVarP(&req.configPath, "config", "c", "", "config file (default: ./config/config.yaml)")
	fs.StringSliceVarP(&req.symbols, "symbol", "s", nil, "market symbol(s), e.g. BTCUSDT")
	fs.StringVar(&req.dataDir, "data-dir", "", "directory holding the {SYMBOL}_DATA_*.txt logs")
	if req.command == "stream" {
		fs.StringVarP(&req.filter, "filter", "f", "", "0 = raw, 1 = human readable, 2 = chart format")
	}

	if err := fs.Parse(args[1:]); err != nil {
		return req, err
	}
	return req, nil
}

func runStream(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	loc, err := cfg.Stream.Location()
	if err != nil {
		return xerr.New(xerr.KindConfiguration, "timezone", err)
	}

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, log); err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	opts := collector.Options{
		Symbols:         cfg.Stream.Symbols,
		Filter:          cfg.Stream.Filter,
		ValidateTimeout: cfg.Binance.REST.Timeout,
		Sink:            logsink.New(cfg.Stream.DataDir),
		Formatter:       stream.NewFormatter(timecodec.New(loc)),
		Logger:          log,
		Feed: binance.NewWSClient(binance.WSOptions{
			URL:              cfg.Binance.WS.URL,
			HandshakeTimeout: cfg.Binance.WS.HandshakeTimeout,
			PongWait:         cfg.Binance.WS.PongWait,
			MaxReconnects:    cfg.Binance.WS.MaxReconnects,
			ReconnectBackoff: cfg.Binance.WS.ReconnectBackoff,
			MaxBackoff:       cfg.Binance.WS.MaxBackoff,
		}, log),
	}
	if cfg.Binance.REST.ValidateSymbols {
		opts.Validator = binance.NewRESTClient(cfg.Binance.REST.BaseURL, cfg.Binance.REST.Timeout)
	}

	// Initialize PostgreSQL Client
	if cfg.Postgres.Enabled {
		// Reject a bad filter before creating databases.
		if _, err := stream.ParseFilterMode(cfg.Stream.Filter); err != nil {
			return err
		}
		db, err := postgres.InitializeAndMigrateTradeRecord(cfg.Postgres, cfg.Log.Environment, true)
		if err != nil {
			return xerr.New(xerr.KindIO, "connect to trade archive", err)
		}
		defer db.Close()
		opts.Archive = db
	}

	log.Info("all data are appended into the corresponding files",
		zap.String("dir", cfg.Stream.DataDir),
		zap.Strings("symbols", collector.NormalizeSymbols(cfg.Stream.Symbols)),
		zap.String("filter", cfg.Stream.Filter),
	)
	return collector.Run(ctx, opts)
}

func runChart(cfg *config.Config, log *zap.Logger) error {
	if len(cfg.Stream.Symbols) != 1 {
		return xerr.New(xerr.KindConfiguration, "chart needs exactly one --symbol", nil)
	}
	symbol := cfg.Stream.Symbols[0]

	plotter := chart.NewPNGPlotter(cfg.Chart.OutputDir, cfg.Chart.Width, cfg.Chart.Height)
	if err := collector.Chart(dataset.NewLoader(cfg.Stream.DataDir), plotter, symbol); err != nil {
		return err
	}
	log.Info("chart written", zap.String("path", plotter.Path(collector.NormalizeSymbols([]string{symbol})[0])))
	return nil
}

// describe renders err for the operator, leading with its kind.
func describe(err error) string {
	kind := xerr.KindOf(err)
	switch kind {
	case xerr.KindDatasetUnavailable:
		return "no data recorded for this pair, cannot create chart: " + err.Error()
	case xerr.KindDatasetCorrupt:
		return "recorded data is damaged, cannot create chart: " + err.Error()
	case xerr.KindUnknown:
		return "error: " + err.Error()
	}
	if msg := err.Error(); strings.HasPrefix(msg, kind.String()) {
		return msg
	}
	return kind.String() + ": " + err.Error()
}
