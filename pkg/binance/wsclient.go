package binance

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tradelog/internal/metrics"
	"tradelog/internal/stream"
)

// WSOptions tunes the trade stream connection.
type WSOptions struct {
	URL              string        // e.g., wss://stream.binance.com:9443
	HandshakeTimeout time.Duration // dial + upgrade
	PongWait         time.Duration // max silence before the read fails
	WriteWait        time.Duration // control frame write deadline
	ReadLimit        int64

	// Reconnect policy: on a read error the subscription redials up to
	// MaxReconnects times, doubling ReconnectBackoff each attempt up to
	// MaxBackoff. Zero MaxReconnects surfaces the first read error.
	MaxReconnects    int
	ReconnectBackoff time.Duration
	MaxBackoff       time.Duration
}

func (o *WSOptions) withDefaults() {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 2 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 1 << 20
	}
	if o.ReconnectBackoff <= 0 {
		o.ReconnectBackoff = time.Second
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 30 * time.Second
	}
}

// WSClient opens Binance trade stream subscriptions.
type WSClient struct {
	opts   WSOptions
	dialer *websocket.Dialer
	logger *zap.Logger
}

var _ stream.Feed = (*WSClient)(nil)

// NewWSClient creates a new WebSocket client with the given options and logger.
func NewWSClient(opts WSOptions, logger *zap.Logger) *WSClient {
	opts.withDefaults()
	return &WSClient{
		opts: opts,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		logger: logger,
	}
}

// StreamURL returns the raw stream endpoint for symbol's trades.
func (c *WSClient) StreamURL(symbol string) string {
	return strings.TrimRight(c.opts.URL, "/") + "/ws/" + strings.ToLower(symbol) + "@trade"
}

// Subscribe connects to the symbol's trade stream. The connection stays
// open until Close.
func (c *WSClient) Subscribe(ctx context.Context, symbol string) (stream.Subscription, error) {
	sub := &wsSubscription{
		client: c,
		url:    c.StreamURL(symbol),
		logger: c.logger.With(zap.String("symbol", symbol)),
	}
	conn, err := c.dial(ctx, sub.url)
	if err != nil {
		return nil, err
	}
	sub.conn = conn
	sub.logger.Info("WebSocket connected", zap.String("url", sub.url))
	return sub, nil
}

func (c *WSClient) dial(ctx context.Context, url string) (*websocket.Conn, error) {
	conn, _, err := c.dialer.DialContext(ctx, url, nil)
	if err != nil {
		c.logger.Error("Failed to connect to WebSocket", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	conn.SetReadLimit(c.opts.ReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})
	// The exchange pings periodically and drops clients that do not answer.
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.opts.WriteWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil
		}
		return err
	})
	return conn, nil
}

type wsSubscription struct {
	client *WSClient
	url    string
	logger *zap.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

var errSubscriptionClosed = errors.New("subscription closed")

func (s *wsSubscription) current() (*websocket.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errSubscriptionClosed
	}
	return s.conn, nil
}

// Recv returns the next trade. Cancelling ctx closes the connection to
// unblock a pending read.
func (s *wsSubscription) Recv(ctx context.Context) (stream.TradeEvent, error) {
	attempts := 0
	for {
		conn, err := s.current()
		if err != nil {
			return stream.TradeEvent{}, err
		}

		stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
		_, msg, err := conn.ReadMessage()
		stop()

		if err != nil {
			if ctx.Err() != nil {
				return stream.TradeEvent{}, ctx.Err()
			}
			s.logger.Error("WebSocket read error", zap.Error(err))
			readErr := fmt.Errorf("read %s: %w", s.url, err)
			for {
				if attempts >= s.client.opts.MaxReconnects {
					return stream.TradeEvent{}, readErr
				}
				attempts++
				rerr := s.reconnect(ctx, attempts)
				if rerr == nil {
					break
				}
				if ctx.Err() != nil || errors.Is(rerr, errSubscriptionClosed) {
					return stream.TradeEvent{}, rerr
				}
			}
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.client.opts.PongWait))

		ev, ok, err := ParseTrade(msg)
		if err != nil {
			return stream.TradeEvent{}, err
		}
		if !ok {
			continue // Ignore non-trade frames (e.g., subscription responses)
		}
		return ev, nil
	}
}

// reconnect waits out the backoff for this attempt and swaps in a new connection.
func (s *wsSubscription) reconnect(ctx context.Context, attempt int) error {
	opts := s.client.opts
	wait := opts.ReconnectBackoff << (attempt - 1)
	if wait > opts.MaxBackoff || wait <= 0 {
		wait = opts.MaxBackoff
	}
	s.logger.Warn("Retrying reconnect...", zap.Int("attempt", attempt), zap.Duration("backoff", wait))

	timer := time.NewTimer(wait)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
	}

	newConn, err := s.client.dial(ctx, s.url)
	if err != nil {
		metrics.ReconnectsTotal.WithLabelValues("failed").Inc()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		_ = newConn.Close()
		return errSubscriptionClosed
	}
	_ = s.conn.Close()
	s.conn = newConn
	metrics.ReconnectsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("Reconnected successfully")
	return nil
}

// Close sends a close frame and releases the connection. Safe to call twice.
func (s *wsSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(s.client.opts.WriteWait))
	if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
