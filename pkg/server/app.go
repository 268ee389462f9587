package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "RegimeWatch/internal/domain/repository"
	domsvc "RegimeWatch/internal/domain/service"
	"RegimeWatch/internal/service/telegram"
	"RegimeWatch/internal/usecase"
	pkgch "RegimeWatch/pkg/clickhouse"
	"RegimeWatch/pkg/config"
	xhttp "RegimeWatch/pkg/http"
	applogger "RegimeWatch/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	monitor     *usecase.RegimeMonitor
	bot         *telegram.Bot // nil when telegram disabled
	source      drepo.CandleSource
	publisher   domsvc.AlertPublisher // nil when kafka disabled
	chClient    *pkgch.Client         // nil unless clickhouse datasource
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	monitor *usecase.RegimeMonitor,
	bot *telegram.Bot,
	source drepo.CandleSource,
	publisher domsvc.AlertPublisher,
	chClient *pkgch.Client,
	httpHandler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		log:         log,
		monitor:     monitor,
		bot:         bot,
		source:      source,
		publisher:   publisher,
		chClient:    chClient,
		httpHandler: httpHandler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Stream-backed sources run their own connect/read loop.
	if runner, ok := a.source.(interface{ Start(ctx context.Context) }); ok {
		go runner.Start(ctx)
		a.log.Info("market data stream started")
	}

	go func() {
		if err := a.monitor.Run(ctx); err != nil {
			a.log.Error("monitor error", applogger.Error(err))
		}
	}()
	a.log.Info("regime monitor started",
		applogger.String("symbol", a.cfg.Market.Symbol),
		applogger.Duration("poll_interval", a.cfg.Market.PollInterval),
	)

	if a.bot != nil {
		go a.bot.Run(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("alert publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
