package ranking

import "time"

// Kind selects one of the windowed ranking timelines.
type Kind string

const (
	KindLeague    Kind = "league"
	KindX         Kind = "x"
	KindSplatfest Kind = "splatfest"
)

// GroupType is the league participant grouping, stored as a single character
// the way the upstream league id suffix spells it.
type GroupType string

const (
	GroupTypeTeam GroupType = "T"
	GroupTypePair GroupType = "P"
)

// GroupTypeFromKey maps the upstream league_type key to a GroupType.
func GroupTypeFromKey(key string) (GroupType, bool) {
	switch key {
	case "team":
		return GroupTypeTeam, true
	case "pair":
		return GroupTypePair, true
	default:
		return "", false
	}
}

// LeagueEntry is one player's row within a league window. WeaponID is the raw
// upstream id; reskin aliasing is applied by readers, never at write time.
type LeagueEntry struct {
	StartTime time.Time
	GroupType GroupType
	GroupID   string
	PlayerID  string
	WeaponID  int
	Rank      int
	Rating    float64
}

// XEntry is one player's row within a monthly X window for one ranked rule.
type XEntry struct {
	StartTime time.Time
	RuleID    int
	PlayerID  string
	WeaponID  int
	Rank      int
	Rating    float64
}

// SplatfestEntry is one player's row on a regional Splatfest leaderboard.
type SplatfestEntry struct {
	Region      string
	SplatfestID int64
	Team        string
	PlayerID    string
	WeaponID    int
	Rank        int
	Rating      float64
}

// SplatfestSchedule is an upstream-defined event window. Three schedules
// overlapping the same instant mean a global Splatfest, which suppresses the
// normal league timeline.
type SplatfestSchedule struct {
	Region      string
	SplatfestID int64
	StartTime   time.Time
	EndTime     time.Time
	TeamAlpha   string
	TeamBravo   string
}

// LeagueSchedule is one stage rotation row matching a league window start.
type LeagueSchedule struct {
	StartTime time.Time
	RuleID    int
	StageIDs  []int
}
