package splatnet

// SplatNet encodes most numeric ids as quoted strings; the ,string tag
// options below absorb that.

type weaponRef struct {
	ID int `json:"id,string"`
}

type leagueRankingEnvelope struct {
	LeagueID   string        `json:"league_id"`
	LeagueType leagueType    `json:"league_type"`
	StartTime  int64         `json:"start_time"`
	Rankings   []leagueGroup `json:"rankings"`
}

type leagueType struct {
	Key string `json:"key"`
}

type leagueGroup struct {
	TagID      string         `json:"tag_id"`
	Rank       int            `json:"rank"`
	Point      float64        `json:"point"`
	Cheater    bool           `json:"cheater"`
	TagMembers []leagueMember `json:"tag_members"`
}

type leagueMember struct {
	PrincipalID string    `json:"principal_id"`
	Weapon      weaponRef `json:"weapon"`
	Cheater     bool      `json:"cheater"`
}

type xRankingEnvelope struct {
	StartTime   int64          `json:"start_time"`
	TopRankings []xRankingItem `json:"top_rankings"`
}

type xRankingItem struct {
	PrincipalID string    `json:"principal_id"`
	Name        string    `json:"name"`
	Weapon      weaponRef `json:"weapon"`
	Rank        int       `json:"rank"`
	XPower      float64   `json:"x_power"`
	Cheater     bool      `json:"cheater"`
}

type festivalRankingEnvelope struct {
	Rankings festivalRankingSides `json:"rankings"`
}

type festivalRankingSides struct {
	Alpha []festivalRankingItem `json:"alpha"`
	Bravo []festivalRankingItem `json:"bravo"`
}

type festivalRankingItem struct {
	Order   int                 `json:"order"`
	Score   *float64            `json:"score"`
	Cheater bool                `json:"cheater"`
	Info    festivalRankingInfo `json:"info"`
}

type festivalRankingInfo struct {
	PrincipalID string    `json:"principal_id"`
	Nickname    string    `json:"nickname"`
	Weapon      weaponRef `json:"weapon"`
}
