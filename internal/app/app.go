package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/yukinkling/splatoon-stats/external/splatnet"
	"github.com/yukinkling/splatoon-stats/external/splatoon2ink"
	"github.com/yukinkling/splatoon-stats/internal/config"
	"github.com/yukinkling/splatoon-stats/internal/domain/weapon"
	"github.com/yukinkling/splatoon-stats/internal/infrastructure/repository/postgres"
	"github.com/yukinkling/splatoon-stats/internal/platform/logging"
	"github.com/yukinkling/splatoon-stats/internal/platform/resilience"
	"github.com/yukinkling/splatoon-stats/internal/usecase"
)

// Application wires the database, the upstream clients and the services the
// fetcher and backfill binaries run.
type Application struct {
	Config config.Config
	Logger *logging.Logger
	DB     *sqlx.DB

	Weapons  *weapon.Resolver
	LiveSync *usecase.LiveSyncService
	Backfill *usecase.BackfillService
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logger.Info("database connected", "db_name", dbNameFromURL(cfg.DBURL))

	leagueRepo := postgres.NewLeagueRankingRepository(db)
	xRepo := postgres.NewXRankingRepository(db)
	splatfestRepo := postgres.NewSplatfestRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	nameRepo := postgres.NewPlayerNameRepository(db)
	weaponRepo := postgres.NewWeaponRepository(db)

	aliases, err := weaponRepo.ListAliases(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load weapon aliases: %w", err)
	}
	logger.Info("weapon aliases loaded", "count", len(aliases))

	splatnetClient := splatnet.NewClient(splatnet.ClientConfig{
		BaseURL:        cfg.SplatNetBaseURL,
		SessionCookie:  cfg.SplatNetSession,
		UserAgent:      cfg.SplatNetUserAgent,
		AcceptLanguage: cfg.SplatNetAcceptLanguage,
		Timeout:        cfg.SplatNetTimeout,
		Logger:         logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SplatNetCircuitEnabled,
			FailureThreshold: cfg.SplatNetCircuitFailureCount,
			OpenTimeout:      cfg.SplatNetCircuitOpenTimeout,
		},
	})
	mirrorClient := splatoon2ink.NewClient(splatoon2ink.ClientConfig{
		BaseURL:   cfg.Splatoon2InkBaseURL,
		UserAgent: cfg.Splatoon2InkUserAgent,
		Timeout:   cfg.Splatoon2InkTimeout,
		Logger:    logger,
	})

	ingest := usecase.NewIngestService(leagueRepo, xRepo, splatfestRepo, nameRepo, logger)
	reconcile := usecase.NewReconcileService(leagueRepo, xRepo, splatfestRepo, logger)

	liveSync := usecase.NewLiveSyncService(
		ingest,
		splatnetClient,
		splatnetClient,
		splatnetClient,
		mirrorClient,
		splatfestRepo,
		scheduleRepo,
		usecase.LiveSyncConfig{
			LeagueEnabled:        cfg.FetchLeagueEnabled,
			XEnabled:             cfg.FetchXEnabled,
			SplatfestEnabled:     cfg.FetchSplatfestEnabled,
			MinUpcomingSchedules: cfg.MinUpcomingSchedules,
			SplatfestFetchLimit:  cfg.SplatfestFetchLimit,
			SplatfestInterval:    cfg.SplatfestFetchInterval,
			XIncompleteThreshold: cfg.XIncompleteThreshold,
			PageInterval:         cfg.XPageInterval,
		},
		logger,
	)
	backfill := usecase.NewBackfillService(
		reconcile,
		ingest,
		leagueRepo,
		xRepo,
		splatnetClient,
		splatnetClient,
		usecase.BackfillConfig{
			WindowIntervalMin:    cfg.BackfillWindowIntervalMin,
			WindowIntervalMax:    cfg.BackfillWindowIntervalMax,
			GroupTypeIntervalMin: cfg.BackfillGroupTypeIntervalMin,
			GroupTypeIntervalMax: cfg.BackfillGroupTypeIntervalMax,
			PageInterval:         cfg.XPageInterval,
			XIncompleteThreshold: cfg.XIncompleteThreshold,
			MaxWindows:           cfg.BackfillMaxWindows,
		},
		logger,
	)

	return &Application{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Weapons:  weapon.NewResolver(aliases),
		LiveSync: liveSync,
		Backfill: backfill,
	}, nil
}

func (a *Application) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
