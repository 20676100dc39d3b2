package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Binance  BinanceConfig  `mapstructure:"binance"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type BinanceConfig struct {
	REST RESTConfig `mapstructure:"rest"`
	WS   WSConfig   `mapstructure:"ws"`
}

type RESTConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ValidateSymbols bool          `mapstructure:"validate_symbols"` // check symbols via exchangeInfo before streaming
}

type WSConfig struct {
	URL              string        `mapstructure:"url"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	PongWait         time.Duration `mapstructure:"pong_wait"`
	MaxReconnects    int           `mapstructure:"max_reconnects"` // 0 = end the session on the first read error
	ReconnectBackoff time.Duration `mapstructure:"reconnect_backoff"`
	MaxBackoff       time.Duration `mapstructure:"max_backoff"`
}

type StreamConfig struct {
	Symbols  []string `mapstructure:"symbols"`  // e.g., ["BTCUSDT"]
	Filter   string   `mapstructure:"filter"`   // "0" raw, "1" human, "2" compressed
	DataDir  string   `mapstructure:"data_dir"` // where {SYMBOL}_DATA_{LABEL}.txt logs live
	Timezone string   `mapstructure:"timezone"` // IANA name; empty = local time
}

type ChartConfig struct {
	OutputDir string  `mapstructure:"output_dir"`
	Width     float64 `mapstructure:"width"`  // inches
	Height    float64 `mapstructure:"height"` // inches
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // e.g., ":9102"; empty disables /metrics
}

// Location resolves the configured timezone.
func (c StreamConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("binance.rest.base_url", "https://api.binance.com")
	v.SetDefault("binance.rest.timeout", 10*time.Second)
	v.SetDefault("binance.rest.validate_symbols", true)
	v.SetDefault("binance.ws.url", "wss://stream.binance.com:9443")
	v.SetDefault("binance.ws.handshake_timeout", 10*time.Second)
	v.SetDefault("binance.ws.pong_wait", 60*time.Second)
	v.SetDefault("binance.ws.max_reconnects", 0)
	v.SetDefault("binance.ws.reconnect_backoff", time.Second)
	v.SetDefault("binance.ws.max_backoff", 30*time.Second)

	v.SetDefault("stream.filter", "1")
	v.SetDefault("stream.data_dir", ".")

	v.SetDefault("chart.output_dir", ".")
	v.SetDefault("chart.width", 10.0)
	v.SetDefault("chart.height", 6.0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.environment", "dev")

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
}

// Load loads application configuration using Viper.
// It reads from path (or config.yaml next to the binary when path is empty),
// falls back to defaults when no file exists, and overrides with environment
// variables (e.g., STREAM_DATA_DIR, BINANCE_WS_URL).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config") // config.yaml
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
		}
	}

	// Support environment variables with dot notation (e.g., BINANCE_WS_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
