package match

import (
	"strings"

	"github.com/sells-group/ticker-crosswalk/internal/model"
	"github.com/sells-group/ticker-crosswalk/internal/normalize"
)

// coreCollisionMinRatio is the floor for resolving several registry entities
// that share one core name. Designator-only variants score far above this;
// anything lower is an ambiguous collision and is not auto-resolved.
const coreCollisionMinRatio = 85

// Index holds the per-run lookup structures over the registry: full
// normalized names, core-name buckets, and the raw name list in input order
// for deterministic fuzzy ranking. Read-only after Build.
type Index struct {
	names      []string          // registry names in input order
	cores      []string          // core form of names[i]
	idByName   map[string]string // raw registry name -> entity id
	byNorm     map[string]string // normalized name -> raw registry name
	byCore     map[string][]string
	expansions map[string]string // feed alias -> full name, for fuzzy tier
}

// ExactTier distinguishes how an exact match was found.
type ExactTier int

// Exact-match tiers.
const (
	TierNone ExactTier = iota
	TierNormalized
	TierCore
)

// Build constructs the registry index. Acronym expansions are pre-registered
// into the normalized lookup: an alias resolves exactly when some registry
// entity's normalized name equals the expansion's.
func Build(entities []model.Entity, expansions map[string]string) *Index {
	idx := &Index{
		names:      make([]string, 0, len(entities)),
		cores:      make([]string, 0, len(entities)),
		idByName:   make(map[string]string, len(entities)),
		byNorm:     make(map[string]string, len(entities)),
		byCore:     make(map[string][]string),
		expansions: expansions,
	}
	for _, e := range entities {
		idx.names = append(idx.names, e.Name)
		idx.idByName[e.Name] = e.ID
		n := normalize.Name(e.Name)
		idx.byNorm[n] = e.Name
		core := normalize.Core(e.Name)
		idx.cores = append(idx.cores, core)
		idx.byCore[core] = append(idx.byCore[core], e.Name)
	}
	for alias, full := range expansions {
		fullNorm := normalize.Name(full)
		if name, ok := idx.byNorm[fullNorm]; ok {
			idx.byNorm[normalize.Name(alias)] = name
		}
	}
	return idx
}

// ID returns the entity id for a raw registry name.
func (idx *Index) ID(name string) string { return idx.idByName[name] }

// IDsByName exposes the raw-name to id mapping for audit enrichment.
func (idx *Index) IDsByName() map[string]string { return idx.idByName }

// FindExact resolves a feed name without fuzzy scoring. Tier 1 is a direct
// lookup of the full normalized name. Tier 2 matches on the core form: a
// unique core holder wins outright; several designator-equivalent holders are
// resolved to the highest normalized-name similarity, but only above the
// collision floor; a near-tie is an ambiguous collision and returns no match.
func (idx *Index) FindExact(feedName string) (name string, tier ExactTier) {
	if m, ok := idx.byNorm[normalize.Name(feedName)]; ok {
		return m, TierNormalized
	}
	core := normalize.Core(feedName)
	if core == "" {
		return "", TierNone
	}
	holders := idx.byCore[core]
	switch len(holders) {
	case 0:
		return "", TierNone
	case 1:
		return holders[0], TierCore
	}
	feedNorm := normalize.Name(feedName)
	best, bestScore := "", 0.0
	for _, h := range holders {
		if s := TokenSortRatio(feedNorm, normalize.Name(h)); s > bestScore {
			best, bestScore = h, s
		}
	}
	if bestScore >= coreCollisionMinRatio {
		return best, TierCore
	}
	return "", TierNone
}

// TopMatches ranks every registry name against the feed name by
// token-order-insensitive similarity over core forms and returns the topN,
// descending, ties broken by registry input order. Acronym expansion applies
// to the feed name first.
func (idx *Index) TopMatches(feedName string, topN int) []model.Candidate {
	name := feedName
	if full, ok := idx.expansions[strings.TrimSpace(feedName)]; ok {
		name = full
	} else if full, ok := idx.expansions[strings.ToUpper(strings.TrimSpace(feedName))]; ok {
		name = full
	}
	feedCore := normalize.Core(name)

	scored := make([]model.Candidate, len(idx.names))
	for i, regName := range idx.names {
		scored[i] = model.Candidate{Name: regName, Score: TokenSortRatio(feedCore, idx.cores[i])}
	}
	// Stable selection keeps input order on ties.
	top := make([]model.Candidate, 0, topN)
	for len(top) < topN && len(scored) > 0 {
		bestAt := 0
		for i := 1; i < len(scored); i++ {
			if scored[i].Score > scored[bestAt].Score {
				bestAt = i
			}
		}
		top = append(top, scored[bestAt])
		scored = append(scored[:bestAt], scored[bestAt+1:]...)
	}
	return top
}
