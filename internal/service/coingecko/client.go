package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ChartFeed/internal/domain/models"
	drepo "ChartFeed/internal/domain/repository"
	xhttp "ChartFeed/pkg/http"
	xlogger "ChartFeed/pkg/logger"
)

const (
	// DefaultBaseURL is the public CoinGecko API endpoint.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	defaultUserAgent = "chartfeed/1.0 (+market-chart-service)"
)

// Client implements a HistoryProvider backed by the CoinGecko market_chart API.
type Client struct {
	baseURL    string
	pairID     string
	vsCurrency string
	userAgent  string
	http       *xhttp.Client
	logger     *xlogger.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithUserAgent overrides the request User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout bounds each upstream call so a stuck fetch cannot pin the
// in-flight marker for its timeframe indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = xhttp.NewClient(xhttp.WithTimeout(d))
		}
	}
}

// New creates a CoinGecko HistoryProvider for one trading pair.
func New(baseURL, pairID, vsCurrency string, logger *xlogger.Logger, opts ...Option) drepo.HistoryProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if vsCurrency == "" {
		vsCurrency = "usd"
	}
	c := &Client{
		baseURL:    baseURL,
		pairID:     pairID,
		vsCurrency: vsCurrency,
		userAgent:  defaultUserAgent,
		http:       xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source identifies the upstream provider.
func (c *Client) Source() string { return "coingecko" }

// marketChartBody mirrors the upstream market_chart JSON. total_volumes is
// optional upstream and defaults to empty.
type marketChartBody struct {
	Prices       [][]float64 `json:"prices"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// Fetch issues one GET for the timeframe's lookback window and validates the
// response. It never retries; failures propagate promptly so waiters
// coalesced behind this fetch are released.
func (c *Client) Fetch(ctx context.Context, cfg drepo.TimeframeConfig) (*models.MarketHistory, error) {
	url := fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, c.pairID)

	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    url,
		Headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": c.userAgent,
		},
		QueryParams: map[string][]string{
			"vs_currency": {c.vsCurrency},
			"days":        {fmt.Sprintf("%d", cfg.LookbackDays)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		if c.logger != nil {
			c.logger.Warn("upstream non-2xx",
				xlogger.String("pair", c.pairID),
				xlogger.Int("status", resp.StatusCode),
			)
		}
		return nil, &HTTPError{Status: resp.StatusCode}
	}

	var body marketChartBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)
	}
	if body.Prices == nil {
		return nil, fmt.Errorf("%w: missing prices array", ErrMalformedResponse)
	}

	history := &models.MarketHistory{
		Prices:  make([]models.PricePoint, 0, len(body.Prices)),
		Volumes: make([]models.VolumePoint, 0, len(body.TotalVolumes)),
	}
	for _, pair := range body.Prices {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: price tuple has %d elements", ErrMalformedResponse, len(pair))
		}
		history.Prices = append(history.Prices, models.PricePoint{
			TimestampMs: int64(pair[0]),
			Price:       pair[1],
		})
	}
	for _, pair := range body.TotalVolumes {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: volume tuple has %d elements", ErrMalformedResponse, len(pair))
		}
		history.Volumes = append(history.Volumes, models.VolumePoint{
			TimestampMs: int64(pair[0]),
			Volume:      pair[1],
		})
	}

	return history, nil
}
