package usecase

import (
	"context"
	"fmt"
	"time"

	"ChartFeed/internal/domain/models"
	drepo "ChartFeed/internal/domain/repository"
	"ChartFeed/internal/market"
	icache "ChartFeed/internal/service/cache"
	"ChartFeed/internal/service/coingecko"
	pkgcache "ChartFeed/pkg/cache"
	xlogger "ChartFeed/pkg/logger"
)

// ChartUseCase provides business logic for serving OHLCV charts: it maps a
// timeframe to its fixed config and wires cache -> upstream fetch -> candle
// aggregation.
type ChartUseCase struct {
	pair     string
	provider drepo.HistoryProvider
	cache    *icache.ChartCache
	metrics  drepo.Metrics
	logger   *xlogger.Logger

	// snapshots is an optional shared tier (Redis) letting multiple replicas
	// reuse one upstream fetch per TTL window. Nil disables it.
	snapshots pkgcache.Service

	// serveStaleOnError keeps serving the last expired chart when a refresh
	// fails. Off by default: failures surface unchanged.
	serveStaleOnError bool
}

// ChartOption configures ChartUseCase.
type ChartOption func(*ChartUseCase)

// WithSnapshotCache attaches a shared snapshot cache tier.
func WithSnapshotCache(s pkgcache.Service) ChartOption {
	return func(uc *ChartUseCase) { uc.snapshots = s }
}

// WithStaleFallback enables serving an expired entry when a refresh fails.
func WithStaleFallback(enabled bool) ChartOption {
	return func(uc *ChartUseCase) { uc.serveStaleOnError = enabled }
}

// NewChartUseCase creates the chart orchestrator. The cache instance is owned
// by the caller and constructed once at service start.
func NewChartUseCase(pair string, provider drepo.HistoryProvider, cache *icache.ChartCache, metrics drepo.Metrics, logger *xlogger.Logger, opts ...ChartOption) *ChartUseCase {
	uc := &ChartUseCase{
		pair:     pair,
		provider: provider,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GetChart returns the aggregated chart for tf, from cache when fresh.
func (uc *ChartUseCase) GetChart(ctx context.Context, tf drepo.Timeframe) (*models.ChartResponse, error) {
	cfg, ok := drepo.ConfigFor(tf)
	if !ok {
		return nil, fmt.Errorf("unsupported timeframe %q", tf)
	}

	resp, outcome, err := uc.cache.GetOrRefresh(ctx, tf, cfg.CacheTTL, func(ctx context.Context) (*models.ChartResponse, error) {
		return uc.load(ctx, tf, cfg)
	})

	uc.recordOutcome(tf, outcome)

	if err != nil {
		if uc.serveStaleOnError {
			if stale, ok := uc.cache.Stale(tf); ok {
				if uc.logger != nil {
					uc.logger.Warn("serving stale chart after refresh failure",
						xlogger.String("timeframe", string(tf)),
						xlogger.Error(err),
					)
				}
				return stale, nil
			}
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RecordCandlesServed(string(tf), len(resp.Candles))
	}
	return resp, nil
}

// TTLFor exposes a timeframe's cache TTL, e.g. for Cache-Control headers.
func (uc *ChartUseCase) TTLFor(tf drepo.Timeframe) time.Duration {
	if cfg, ok := drepo.ConfigFor(tf); ok {
		return cfg.CacheTTL
	}
	return 0
}

func (uc *ChartUseCase) load(ctx context.Context, tf drepo.Timeframe, cfg drepo.TimeframeConfig) (*models.ChartResponse, error) {
	key := uc.snapshotKey(tf)

	if uc.snapshots != nil {
		var shared models.ChartResponse
		if err := uc.snapshots.Get(ctx, key, &shared); err == nil {
			return &shared, nil
		}
	}

	start := time.Now()
	history, err := uc.provider.Fetch(ctx, cfg)
	if uc.metrics != nil {
		uc.metrics.RecordFetchDuration(string(tf), time.Since(start).Seconds())
	}
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordUpstreamError(coingecko.ErrorKind(err))
		}
		return nil, err
	}

	candles := market.BuildCandles(history.Prices, history.Volumes, cfg.BucketWidth.Milliseconds())

	resp := &models.ChartResponse{
		Pair:               uc.pair,
		Timeframe:          string(tf),
		GranularitySeconds: int64(cfg.BucketWidth.Seconds()),
		UpdatedAt:          time.Now().UTC(),
		Source:             uc.provider.Source(),
		Candles:            candles,
	}

	if uc.snapshots != nil {
		if err := uc.snapshots.Set(ctx, key, resp, cfg.CacheTTL); err != nil && uc.logger != nil {
			uc.logger.Warn("snapshot cache write failed",
				xlogger.String("timeframe", string(tf)),
				xlogger.Error(err),
			)
		}
	}

	return resp, nil
}

func (uc *ChartUseCase) snapshotKey(tf drepo.Timeframe) string {
	return pkgcache.GenerateKeyWithParams("chart", uc.pair, string(tf))
}

func (uc *ChartUseCase) recordOutcome(tf drepo.Timeframe, outcome icache.Outcome) {
	if uc.metrics == nil {
		return
	}
	switch outcome {
	case icache.OutcomeHit:
		uc.metrics.RecordCacheHit(string(tf))
	default:
		uc.metrics.RecordCacheMiss(string(tf))
	}
}
