package ranking

// Rule is one of the four ranked modes the upstream publishes X rankings for.
type Rule struct {
	ID  int
	Key string
}

var RankedRules = []Rule{
	{ID: 1, Key: "splat_zones"},
	{ID: 2, Key: "tower_control"},
	{ID: 3, Key: "rainmaker"},
	{ID: 4, Key: "clam_blitz"},
}

func FindRuleID(key string) (int, bool) {
	for _, rule := range RankedRules {
		if rule.Key == key {
			return rule.ID, true
		}
	}
	return 0, false
}
