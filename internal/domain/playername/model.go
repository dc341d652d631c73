package playername

import "time"

// Record states that a player was seen using a name as of LastUsed. Records
// accumulate; the ledger never forgets an old name.
type Record struct {
	PlayerID   string
	PlayerName string
	LastUsed   time.Time
}

// Latest picks the current display name from a player's records: the greatest
// LastUsed wins, ties broken by the lexicographically smallest name. Storage
// applies the same ordering in the latest-name materialized view.
func Latest(records []Record) (Record, bool) {
	var best Record
	found := false
	for _, record := range records {
		if !found {
			best = record
			found = true
			continue
		}
		if record.LastUsed.After(best.LastUsed) {
			best = record
			continue
		}
		if record.LastUsed.Equal(best.LastUsed) && record.PlayerName < best.PlayerName {
			best = record
		}
	}
	return best, found
}
