package binance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/segmentio/encoding/json"

	"tradelog/pkg/xerr"
)

type RESTClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RESTClient) HTTPClient() *http.Client {
	return c.httpClient
}

// ValidateSymbol checks that symbol exists on the exchange and is trading.
// Unknown or halted symbols are configuration errors.
func (c *RESTClient) ValidateSymbol(ctx context.Context, symbol string) error {
	endpoint := c.baseURL + "/api/v3/exchangeInfo?symbol=" + url.QueryEscape(symbol)

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return xerr.New(xerr.KindIO, "exchangeInfo request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		var apiErr APIError
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Msg != "" {
			return xerr.Newf(xerr.KindConfiguration, nil, "symbol %s: %s (code %d)", symbol, apiErr.Msg, apiErr.Code)
		}
		return xerr.Newf(xerr.KindConfiguration, nil, "symbol %s: %s", symbol, body)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return xerr.Newf(xerr.KindIO, nil, "binance error: status %d: %s", resp.StatusCode, body)
	}

	var info ExchangeInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return xerr.New(xerr.KindIO, "decode exchangeInfo", err)
	}

	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		if s.Status != "TRADING" {
			return xerr.Newf(xerr.KindConfiguration, nil, "symbol %s is not trading (status %s)", symbol, s.Status)
		}
		return nil
	}
	return xerr.Newf(xerr.KindConfiguration, nil, "symbol %s not listed", symbol)
}
