package di

import (
	"fmt"

	"ChartFeed/internal/domain/repository"
	"ChartFeed/internal/handler/api"
	icache "ChartFeed/internal/service/cache"
	"ChartFeed/internal/service/coingecko"
	"ChartFeed/internal/usecase"
	pkgcache "ChartFeed/pkg/cache"
	"ChartFeed/pkg/config"
	xhttp "ChartFeed/pkg/http"
	xlogger "ChartFeed/pkg/logger"
	"ChartFeed/pkg/metrics"
	"ChartFeed/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	l, err := xlogger.New(&xlogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHistoryProvider creates the CoinGecko upstream client.
func ProvideHistoryProvider(cfg *config.Config, logger *xlogger.Logger) repository.HistoryProvider {
	return coingecko.New(
		cfg.Upstream.BaseURL,
		cfg.Upstream.PairID,
		cfg.Upstream.VsCurrency,
		logger,
		coingecko.WithTimeout(cfg.Upstream.Timeout),
		coingecko.WithUserAgent(cfg.Upstream.UserAgent),
	)
}

// ProvideChartCache creates the per-timeframe single-flight cache. One
// instance for the process lifetime, owned through the usecase.
func ProvideChartCache() *icache.ChartCache {
	return icache.NewChartCache()
}

// ProvideSnapshotCache creates the optional shared snapshot tier. Returns a
// nil Service when disabled; the usecase treats nil as "no shared tier".
func ProvideSnapshotCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Snapshot.Enabled {
		return nil, nil
	}

	redisCache, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Snapshot.Host),
		pkgcache.WithRedisPort(cfg.Snapshot.Port),
		pkgcache.WithRedisPassword(cfg.Snapshot.Password),
		pkgcache.WithRedisDB(cfg.Snapshot.DB),
		pkgcache.WithRedisPrefix(cfg.Snapshot.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot cache: %w", err)
	}
	return pkgcache.NewLayeredCache(redisCache), nil
}

// ProvideChartUseCase creates the chart orchestrator.
func ProvideChartUseCase(
	cfg *config.Config,
	provider repository.HistoryProvider,
	cache *icache.ChartCache,
	m repository.Metrics,
	snapshots pkgcache.Service,
	logger *xlogger.Logger,
) *usecase.ChartUseCase {
	opts := []usecase.ChartOption{
		usecase.WithStaleFallback(cfg.Chart.ServeStaleOnError),
	}
	if snapshots != nil {
		opts = append(opts, usecase.WithSnapshotCache(snapshots))
	}
	return usecase.NewChartUseCase(cfg.Upstream.PairID, provider, cache, m, logger, opts...)
}

// ProvideChartsHandler creates the Echo chart handler.
func ProvideChartsHandler(logger *xlogger.Logger, charts *usecase.ChartUseCase) xhttp.Handler {
	return api.NewChartsEchoHandler(logger, charts)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *xlogger.Logger,
	handler xhttp.Handler,
	snapshots pkgcache.Service,
) *server.App {
	return server.New(cfg, logger, handler, snapshots)
}
