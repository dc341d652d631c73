package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresSessionCookie(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("IKSM_SESSION", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without IKSM_SESSION")
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	t.Setenv("IKSM_SESSION", "session-123")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("IKSM_SESSION", "session-123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SplatNetBaseURL != "https://app.splatoon2.nintendo.net/api" {
		t.Fatalf("unexpected SplatNetBaseURL: %q", cfg.SplatNetBaseURL)
	}
	if cfg.Splatoon2InkBaseURL != "https://splatoon2.ink/data" {
		t.Fatalf("unexpected Splatoon2InkBaseURL: %q", cfg.Splatoon2InkBaseURL)
	}
	if !cfg.FetchLeagueEnabled || !cfg.FetchXEnabled || !cfg.FetchSplatfestEnabled {
		t.Fatalf("expected all fetch kinds enabled by default")
	}
	if cfg.MinUpcomingSchedules != 6 {
		t.Fatalf("unexpected MinUpcomingSchedules: %d", cfg.MinUpcomingSchedules)
	}
	if cfg.SplatfestFetchInterval != 2*time.Minute {
		t.Fatalf("unexpected SplatfestFetchInterval: %s", cfg.SplatfestFetchInterval)
	}
	if cfg.XIncompleteThreshold != 1 {
		t.Fatalf("unexpected XIncompleteThreshold: %d", cfg.XIncompleteThreshold)
	}
	if cfg.BackfillWindowIntervalMin != 60*time.Second || cfg.BackfillWindowIntervalMax != 120*time.Second {
		t.Fatalf("unexpected backfill window interval: %s..%s", cfg.BackfillWindowIntervalMin, cfg.BackfillWindowIntervalMax)
	}
}

func TestLoad_BackfillIntervalOrdering(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("IKSM_SESSION", "session-123")
	t.Setenv("BACKFILL_WINDOW_INTERVAL_MIN", "90s")
	t.Setenv("BACKFILL_WINDOW_INTERVAL_MAX", "30s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when min exceeds max")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("IKSM_SESSION", "session-123")
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("IKSM_SESSION", "session-123")
	t.Setenv("APP_SERVICE_NAME", "splatoon-stats-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "splatoon-stats-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_LogLevelParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("IKSM_SESSION", "session-123")
	t.Setenv("APP_LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel.String() != "warn" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
}
