package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yukinkling/splatoon-stats/internal/app"
	"github.com/yukinkling/splatoon-stats/internal/config"
	"github.com/yukinkling/splatoon-stats/internal/domain/ranking"
	"github.com/yukinkling/splatoon-stats/internal/observability"
	"github.com/yukinkling/splatoon-stats/internal/platform/logging"
)

// backfill replays historical windows the database is missing, pacing its
// requests so the upstream sees a human-ish access pattern. It runs until the
// gap list is exhausted, the window cap is hit, or a window fails.
func main() {
	kindFlag := flag.String("kind", "", "timeline to backfill: league or x")
	flag.Parse()

	kind, err := parseKind(*kindFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() { _ = application.Close() }()

	started := time.Now()
	summary, err := application.Backfill.Run(ctx, kind)
	if err != nil {
		logger.Error("backfill aborted",
			"kind", string(kind),
			"error", err,
			"windows", summary.Windows,
			"persisted", summary.Persisted,
			"elapsed", time.Since(started),
		)
		os.Exit(1)
	}

	logger.Info("backfill finished",
		"kind", string(kind),
		"windows", summary.Windows,
		"persisted", summary.Persisted,
		"marked_missing", summary.MarkedMissing,
		"skipped", summary.Skipped,
		"entries", summary.Entries,
		"elapsed", time.Since(started),
	)
}

func parseKind(raw string) (ranking.Kind, error) {
	switch raw {
	case "league":
		return ranking.KindLeague, nil
	case "x":
		return ranking.KindX, nil
	default:
		return "", fmt.Errorf("invalid -kind %q: valid values are league, x", raw)
	}
}
