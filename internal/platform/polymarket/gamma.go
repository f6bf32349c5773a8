// Package polymarket is the REST client for Polymarket's Gamma API, the
// upstream source of market listings.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

// DefaultMarketLimit is the number of markets requested per listing call.
const DefaultMarketLimit = 100

// GammaClient is the REST client for the Polymarket Gamma API, which
// provides market discovery and metadata.
type GammaClient struct {
	baseURL    string
	limit      int
	httpClient *http.Client
}

// GammaOption customises a GammaClient.
type GammaOption func(*GammaClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) GammaOption {
	return func(g *GammaClient) { g.httpClient = c }
}

// WithMarketLimit overrides the number of markets fetched per listing.
func WithMarketLimit(limit int) GammaOption {
	return func(g *GammaClient) {
		if limit > 0 {
			g.limit = limit
		}
	}
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
// timeout bounds every upstream request; there is no retry.
func NewGammaClient(baseURL string, timeout time.Duration, opts ...GammaOption) *GammaClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	g := &GammaClient{
		baseURL: baseURL,
		limit:   DefaultMarketLimit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ListActiveMarkets returns the raw records of active, non-closed,
// non-archived markets. Records are returned as delivered; no normalization
// happens here.
func (g *GammaClient) ListActiveMarkets(ctx context.Context) ([]domain.RawMarket, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(g.limit))
	params.Set("active", "true")
	params.Set("closed", "false")
	params.Set("archived", "false")

	body, err := g.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: list markets: %w", err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}

	raws := make([]domain.RawMarket, 0, len(apiMarkets))
	for i := range apiMarkets {
		raws = append(raws, apiMarkets[i].ToRawMarket())
	}
	return raws, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx responses onto domain sentinel errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	if len(bodyStr) > 512 {
		bodyStr = bodyStr[:512]
	}
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
