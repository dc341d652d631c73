package usecase

import (
	"context"
	"time"

	"github.com/yukinkling/splatoon-stats/internal/domain/ranking"
)

// LeagueRankingProvider fetches one league window's global ranking. The
// leagueID is the YYMMDDHH window id plus the group-type suffix (T or P).
type LeagueRankingProvider interface {
	FetchLeagueRanking(ctx context.Context, leagueID string) (ExternalLeagueRanking, error)
}

// XRankingProvider fetches one page of one rule's monthly X ranking.
type XRankingProvider interface {
	FetchXRankingPage(ctx context.Context, windowID, ruleKey string, page int) (ExternalXRankingPage, error)
}

// SplatfestRankingProvider fetches a regional Splatfest leaderboard.
type SplatfestRankingProvider interface {
	FetchSplatfestRanking(ctx context.Context, region string, splatfestID int64) (ExternalSplatfestRanking, error)
}

// ScheduleProvider fetches upcoming stage rotations and Splatfest schedules
// from the mirror API.
type ScheduleProvider interface {
	FetchLeagueSchedules(ctx context.Context) ([]ExternalLeagueSchedule, error)
	FetchSplatfestSchedules(ctx context.Context) ([]ExternalSplatfestSchedule, error)
}

type ExternalLeagueRanking struct {
	LeagueID  string
	GroupType ranking.GroupType
	StartTime time.Time
	Groups    []ExternalLeagueGroup
}

type ExternalLeagueGroup struct {
	GroupID string
	Rank    int
	Point   float64
	Cheater bool
	Members []ExternalLeagueMember
}

type ExternalLeagueMember struct {
	PlayerID string
	WeaponID int
	Cheater  bool
}

type ExternalXRankingPage struct {
	StartTime time.Time
	Entries   []ExternalXRankingEntry
}

type ExternalXRankingEntry struct {
	PlayerID   string
	PlayerName string
	WeaponID   int
	Rank       int
	XPower     float64
	Cheater    bool
}

type ExternalSplatfestRanking struct {
	Region      string
	SplatfestID int64
	Entries     []ExternalSplatfestEntry
}

type ExternalSplatfestEntry struct {
	Team       string
	PlayerID   string
	PlayerName string
	WeaponID   int
	Rank       int
	Score      float64
	Cheater    bool
}

type ExternalLeagueSchedule struct {
	StartTime time.Time
	RuleKey   string
	StageIDs  []int
}

type ExternalSplatfestSchedule struct {
	Region      string
	SplatfestID int64
	StartTime   time.Time
	EndTime     time.Time
	TeamAlpha   string
	TeamBravo   string
}
