package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/finwise/finwise_backend/internal/apperrors"
	portsprov "github.com/finwise/finwise_backend/internal/core/ports/providers"
)

const defaultTimeout = 5 * time.Second

// Client fetches spot FX quotes from the market data HTTP API.
type Client struct {
	baseURL string
	client  *http.Client
}

type quoteResponse struct {
	Rate float64 `json:"rate"`
}

// NewClient creates a market data client. timeout <= 0 falls back to the
// default request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ensure Client implements portsprov.RateSource
var _ portsprov.RateSource = (*Client)(nil)

// FetchRate requests the current quote for one currency pair. Every failure
// mode of the upstream API maps to apperrors.ErrProvider so callers never
// depend on transport details.
func (c *Client) FetchRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (float64, error) {
	endpoint := fmt.Sprintf("%s/rates?from=%s&to=%s",
		c.baseURL, url.QueryEscape(fromCurrencyCode), url.QueryEscape(toCurrencyCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create request: %v", apperrors.ErrProvider, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: request failed: %v", apperrors.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: market data API returned status %d", apperrors.ErrProvider, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read response body: %v", apperrors.ErrProvider, err)
	}

	var quote quoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return 0, fmt.Errorf("%w: failed to parse quote response: %v", apperrors.ErrProvider, err)
	}
	if quote.Rate <= 0 {
		return 0, fmt.Errorf("%w: quote for %s to %s is not positive", apperrors.ErrProvider, fromCurrencyCode, toCurrencyCode)
	}
	return quote.Rate, nil
}
