package repository

import (
	"context"

	"ChartFeed/internal/domain/models"
)

// HistoryProvider fetches raw price/volume history from the upstream
// market-data API for one timeframe's lookback window.
type HistoryProvider interface {
	Fetch(ctx context.Context, cfg TimeframeConfig) (*models.MarketHistory, error)
	// Source names the upstream, e.g. "coingecko".
	Source() string
}

// Metrics records service-level observations.
type Metrics interface {
	RecordCacheHit(timeframe string)
	RecordCacheMiss(timeframe string)
	RecordUpstreamError(kind string)
	RecordFetchDuration(timeframe string, seconds float64)
	RecordCandlesServed(timeframe string, count int)
}
