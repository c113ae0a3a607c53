package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundme/internal/domain"
)

// DefaultHTTPTimeout bounds a single price request.
const DefaultHTTPTimeout = 5 * time.Second

// maxResponseSize caps the body read from the feed.
const maxResponseSize = 64 << 10

// HTTPFeed reads the price from an HTTP endpoint returning {"price": "..."}.
// Each call issues exactly one request.
type HTTPFeed struct {
	url    string
	client *http.Client
}

type priceResponse struct {
	Price *decimal.Decimal `json:"price"`
}

// NewHTTPFeed creates a feed for url. A zero timeout uses DefaultHTTPTimeout.
func NewHTTPFeed(url string, timeout time.Duration) *HTTPFeed {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPFeed{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// LatestPrice fetches the current price. Every failure wraps
// domain.ErrOracleUnavailable.
func (f *HTTPFeed) LatestPrice(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: feed returned status %d", domain.ErrOracleUnavailable, resp.StatusCode)
	}

	var body priceResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode response: %v", domain.ErrOracleUnavailable, err)
	}
	if body.Price == nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, errMissingPrice)
	}
	if !body.Price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: invalid answer %s", domain.ErrOracleUnavailable, body.Price)
	}

	return *body.Price, nil
}

// Address returns the feed URL.
func (f *HTTPFeed) Address() string {
	return f.url
}

var errMissingPrice = errors.New("response has no price")
