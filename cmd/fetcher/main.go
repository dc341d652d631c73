package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yukinkling/splatoon-stats/internal/app"
	"github.com/yukinkling/splatoon-stats/internal/config"
	"github.com/yukinkling/splatoon-stats/internal/observability"
	"github.com/yukinkling/splatoon-stats/internal/platform/logging"
)

// fetcher runs one live sync pass: the just-finalized league window, the
// rotation top-up, the last complete X month and finished Splatfest
// leaderboards. Scheduling is left to whatever invokes the binary.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownUptrace(ctx); err != nil {
			logger.Error("shutdown uptrace", "error", err)
		}
	}()

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	defer func() { _ = stopPyroscope() }()

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		os.Exit(1)
	}
	defer func() { _ = observability.StopPprofServer(pprofSrv, logger, 5*time.Second) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() { _ = application.Close() }()

	started := time.Now()
	if err := application.LiveSync.Run(ctx); err != nil {
		logger.Error("live sync failed", "error", err, "elapsed", time.Since(started))
		os.Exit(1)
	}
	logger.Info("live sync finished", "elapsed", time.Since(started))
}
