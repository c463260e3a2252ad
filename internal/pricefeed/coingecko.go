// Package pricefeed fetches bitcoin spot prices and keeps a refreshed quote
// per selected currency.
package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/theirongolddev/btcplan/internal/model"
)

const (
	// DefaultBaseURL is the public CoinGecko v3 API.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	apiKeyHeader   = "x-cg-demo-api-key"
	coinID         = "bitcoin"
)

var (
	// ErrRateLimited indicates the provider answered 429.
	ErrRateLimited = errors.New("pricefeed: rate limited")
	// ErrMalformed indicates the response did not carry a usable price.
	ErrMalformed = errors.New("pricefeed: malformed response")
	// ErrUnsupportedCurrency indicates a currency outside the selector set.
	ErrUnsupportedCurrency = errors.New("pricefeed: unsupported currency")
)

// Source supplies the current price of one bitcoin in a currency.
type Source interface {
	Fetch(ctx context.Context, currency string) (float64, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, currency string) (float64, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, currency string) (float64, error) {
	return f(ctx, currency)
}

// SourceName returns the provider name recorded with quotes.
func SourceName(src Source) string {
	if n, ok := src.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "custom"
}

// CoinGecko fetches prices from the CoinGecko simple price endpoint.
type CoinGecko struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

// NewCoinGecko creates a client. An empty baseURL uses DefaultBaseURL and a
// non-positive timeout uses 10s. apiKey may be empty.
func NewCoinGecko(baseURL, apiKey string, timeout time.Duration) *CoinGecko {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CoinGecko{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		timeout: timeout,
		http:    &http.Client{},
	}
}

// Name identifies the provider in recorded quotes.
func (c *CoinGecko) Name() string { return "coingecko" }

// Fetch returns the spot price of one bitcoin in currency.
func (c *CoinGecko) Fetch(ctx context.Context, currency string) (float64, error) {
	if !model.IsSupportedCurrency(currency) {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, currency)
	}
	vs := strings.ToLower(strings.TrimSpace(currency))

	q := url.Values{}
	q.Set("ids", coinID)
	q.Set("vs_currencies", vs)

	body, err := c.get(ctx, "/simple/price?"+q.Encode())
	if err != nil {
		return 0, err
	}
	return parsePrice(body, vs)
}

// get performs a GET request against the API and returns the response body.
func (c *CoinGecko) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("pricefeed: creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/btcplan/1.0")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	//nolint:gosec // base URL comes from configuration
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pricefeed: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pricefeed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("pricefeed: reading response: %w", err)
	}
	return body, nil
}

// parsePrice extracts bitcoin.<vs> from a simple price response.
// Strings are rejected; the API always answers with JSON numbers.
func parsePrice(body []byte, vs string) (float64, error) {
	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	v := gjson.GetBytes(body, coinID+"."+vs)
	if !v.Exists() {
		return 0, fmt.Errorf("%w: missing %s.%s", ErrMalformed, coinID, vs)
	}
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %s.%s is %s", ErrMalformed, coinID, vs, v.Type)
	}
	p := v.Float()
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return 0, fmt.Errorf("%w: price %v", ErrMalformed, p)
	}
	return p, nil
}
