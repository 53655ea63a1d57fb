//go:build wireinject
// +build wireinject

package di

import (
	"ChartFeed/pkg/config"
	"ChartFeed/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Chart pipeline
		ProvideHistoryProvider,
		ProvideChartCache,
		ProvideSnapshotCache,
		ProvideChartUseCase,

		// HTTP surface
		ProvideChartsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
