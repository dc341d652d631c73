package postgres

import "time"

type leagueRankingInsertModel struct {
	StartTime time.Time `db:"start_time"`
	GroupType string    `db:"group_type"`
	GroupID   string    `db:"group_id"`
	PlayerID  string    `db:"player_id"`
	WeaponID  int       `db:"weapon_id"`
	Rank      int       `db:"rank"`
	Rating    float64   `db:"rating"`
}

type xRankingInsertModel struct {
	StartTime time.Time `db:"start_time"`
	RuleID    int       `db:"rule_id"`
	PlayerID  string    `db:"player_id"`
	WeaponID  int       `db:"weapon_id"`
	Rank      int       `db:"rank"`
	Rating    float64   `db:"rating"`
}

type splatfestRankingInsertModel struct {
	Region      string  `db:"region"`
	SplatfestID int64   `db:"splatfest_id"`
	Team        string  `db:"team"`
	PlayerID    string  `db:"player_id"`
	WeaponID    int     `db:"weapon_id"`
	Rank        int     `db:"rank"`
	Rating      float64 `db:"rating"`
}

type splatfestScheduleTableModel struct {
	Region      string    `db:"region"`
	SplatfestID int64     `db:"splatfest_id"`
	StartTime   time.Time `db:"start_time"`
	EndTime     time.Time `db:"end_time"`
	TeamAlpha   string    `db:"team_alpha"`
	TeamBravo   string    `db:"team_bravo"`
}

type knownNameModel struct {
	PlayerID   string    `db:"player_id"`
	PlayerName string    `db:"player_name"`
	LastUsed   time.Time `db:"last_used"`
}
