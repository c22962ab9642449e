// Package quotes looks up current prices from a remote quote provider.
// The provider is treated as slow and unreliable: every lookup takes a
// context and callers must not mutate any state before it succeeds.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when the provider does not know the symbol
var ErrNotFound = errors.New("symbol not found")

// Quote is a current price/name pair for a symbol
type Quote struct {
	Symbol string
	Name   string
	Price  decimal.Decimal
}

// Client fetches quotes over HTTP from an IEX-style endpoint
// (GET {base}/stock/{symbol}/quote?token={key}).
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a quote client for the given provider base URL
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// providerQuote is the provider's wire format
type providerQuote struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	LatestPrice decimal.Decimal `json:"latestPrice"`
}

// Lookup resolves a symbol to its current quote. It returns ErrNotFound
// when the provider has no such symbol, and a wrapped transport error for
// anything else.
func (c *Client) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrNotFound
	}

	addr := fmt.Sprintf("%s/stock/%s/quote?token=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request for %s failed: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request for %s returned %s", symbol, resp.Status)
	}

	var pq providerQuote
	if err := json.NewDecoder(resp.Body).Decode(&pq); err != nil {
		return nil, fmt.Errorf("failed to decode quote for %s: %w", symbol, err)
	}
	if pq.Symbol == "" {
		pq.Symbol = symbol
	}

	return &Quote{
		Symbol: strings.ToUpper(pq.Symbol),
		Name:   pq.CompanyName,
		Price:  pq.LatestPrice,
	}, nil
}
