package weapon

import (
	"context"
	"sort"
)

// Repository loads the reskin alias table from reference data.
type Repository interface {
	// ListAliases maps each reskin weapon id to its canonical root id.
	// Weapons without an entry are already canonical.
	ListAliases(ctx context.Context) (map[int]int, error)
}

// Resolver answers canonical-id and reskin lookups from a static alias
// snapshot. Aliasing is single-level by construction, so resolution is
// idempotent.
type Resolver struct {
	canonical map[int]int
	reskins   map[int][]int
}

func NewResolver(aliases map[int]int) *Resolver {
	reskins := make(map[int][]int, len(aliases))
	for id, root := range aliases {
		reskins[root] = append(reskins[root], id)
	}
	for root := range reskins {
		sort.Ints(reskins[root])
	}
	return &Resolver{
		canonical: aliases,
		reskins:   reskins,
	}
}

// Canonical resolves a raw weapon id to its reskin root; identity when the id
// has no alias entry.
func (r *Resolver) Canonical(weaponID int) int {
	if root, ok := r.canonical[weaponID]; ok {
		return root
	}
	return weaponID
}

// ReskinsOf lists every weapon id resolving to root, the root itself
// included. Readers use this to match all cosmetic variants of a weapon.
func (r *Resolver) ReskinsOf(root int) []int {
	out := make([]int, 0, len(r.reskins[root])+1)
	out = append(out, root)
	out = append(out, r.reskins[root]...)
	return out
}
