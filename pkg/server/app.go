package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	pkgcache "ChartFeed/pkg/cache"
	"ChartFeed/pkg/config"
	xhttp "ChartFeed/pkg/http"
	applogger "ChartFeed/pkg/logger"
)

// App encapsulates the application lifecycle: one HTTP server, one explicitly
// owned chart pipeline behind it, graceful shutdown on SIGINT/SIGTERM.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	handler   xhttp.Handler
	snapshots pkgcache.Service

	httpServer *xhttp.Server
}

// New creates a new App instance. snapshots may be nil when the shared
// snapshot tier is disabled.
func New(cfg *config.Config, logger *applogger.Logger, handler xhttp.Handler, snapshots pkgcache.Service) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		handler:   handler,
		snapshots: snapshots,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithServerTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.logger),
	)

	if err := a.httpServer.Start(); err != nil {
		return err
	}

	a.logger.Info("chart service started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("pair", a.cfg.Upstream.PairID),
		applogger.Int("port", a.cfg.Server.Port),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.snapshots != nil {
		if err := a.snapshots.Close(); err != nil {
			a.logger.Error("snapshot cache close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
