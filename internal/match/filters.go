package match

import (
	"strings"

	"github.com/sells-group/ticker-crosswalk/internal/model"
	"github.com/sells-group/ticker-crosswalk/internal/normalize"
)

// leadingTokenMinRatio is the similarity floor for the first core token of a
// candidate pair. Keeps short-symbol lookalikes apart (NG vs NRG).
const leadingTokenMinRatio = 85

// HardNegatives is an operator-curated deny list of core-name pairs that must
// never match, regardless of score. Pairs are unordered. Load-once, immutable
// for the run.
type HardNegatives struct {
	pairs map[[2]string]bool
}

// NewHardNegatives builds the deny list from raw name pairs. Each side is
// reduced to its core form so config entries match however they were spelled.
func NewHardNegatives(pairs [][2]string) *HardNegatives {
	h := &HardNegatives{pairs: make(map[[2]string]bool, len(pairs))}
	for _, p := range pairs {
		a, b := normalize.Core(p[0]), normalize.Core(p[1])
		if a == "" || b == "" {
			continue
		}
		h.pairs[orderPair(a, b)] = true
	}
	return h
}

// Contains reports whether the core forms of the two names are denied.
func (h *HardNegatives) Contains(feedName, registryName string) bool {
	if h == nil || len(h.pairs) == 0 {
		return false
	}
	a, b := normalize.Core(feedName), normalize.Core(registryName)
	if a == "" || b == "" {
		return false
	}
	return h.pairs[orderPair(a, b)]
}

func orderPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// LeadingTokenAligned reports whether the first core tokens of the two names
// are close enough to consider the pair at all. Names without a leading token
// pass through.
func LeadingTokenAligned(feedCore, registryCore string) bool {
	tf := firstToken(feedCore)
	tr := firstToken(registryCore)
	if tf == "" || tr == "" {
		return true
	}
	return Ratio(tf, tr) >= leadingTokenMinRatio
}

func firstToken(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// SectorConflict reports whether the two names carry sector vocabulary in
// disjoint sector groups. Only tokens NOT shared by both names count: the
// shared tokens are what made the pair a candidate in the first place, so
// just the differing words can tell two industries apart (Rocket Lab USA vs
// Rocket Companies conflicts on lab-vs-companies, not on the shared rocket).
// Symmetric in its arguments; identical names never conflict.
func SectorConflict(a, b string) bool {
	ta := normalize.Tokens(a)
	tb := normalize.Tokens(b)
	ga := sectorGroupIDs(residualTokens(ta, tb))
	gb := sectorGroupIDs(residualTokens(tb, ta))
	if len(ga) == 0 || len(gb) == 0 {
		return false
	}
	for id := range ga {
		if gb[id] {
			return false
		}
	}
	return true
}

func residualTokens(own, other map[string]bool) map[string]bool {
	res := make(map[string]bool, len(own))
	for t := range own {
		if !other[t] {
			res[t] = true
		}
	}
	return res
}

func sectorGroupIDs(tok map[string]bool) map[int]bool {
	ids := make(map[int]bool)
	for i, group := range sectorGroups {
		for t := range tok {
			if group[t] {
				ids[i] = true
				break
			}
		}
	}
	return ids
}

// FundVsCompany reports whether the feed name looks like a fund or share
// class of the registry name: the feed name carries a fund indicator and the
// registry name's tokens are a strict subset of the feed name's.
func FundVsCompany(feedName, registryName string) bool {
	feedTok := normalize.Tokens(feedName)
	hasIndicator := false
	for t := range feedTok {
		if fundIndicators[t] {
			hasIndicator = true
			break
		}
	}
	if !hasIndicator {
		return false
	}
	regTok := normalize.Tokens(registryName)
	if len(regTok) >= len(feedTok) {
		return false
	}
	for t := range regTok {
		if !feedTok[t] {
			return false
		}
	}
	return true
}

// OnlyGenericOverlap reports whether the shared tokens between the two names
// are essentially all geographic/generic filler or designators. Such overlap
// is too weak to accept at normal thresholds.
func OnlyGenericOverlap(feedName, registryName string) bool {
	feedTok := normalize.Tokens(feedName)
	regTok := normalize.Tokens(registryName)
	substantive := 0
	for t := range feedTok {
		if !regTok[t] {
			continue
		}
		if geoGeneric[t] || normalize.IsDesignator(t) {
			continue
		}
		substantive++
	}
	return substantive <= 1
}

// SuspiciousGenericName reports whether a short ticker's feed name consists
// entirely of generic scope words and designators (INTERNATIONAL GOLD
// RESOURCES on a 3-letter symbol). Never auto-matched, regardless of score.
func SuspiciousGenericName(ticker, feedName string) bool {
	if len(ticker) > 4 {
		return false
	}
	core := normalize.Core(feedName)
	for _, t := range strings.Fields(core) {
		if !genericOnly[t] && !normalize.IsDesignator(t) {
			return false
		}
	}
	return true
}

// FilterLeadingToken drops candidates whose first core token diverges from
// the feed name's. Survivors keep their rank order; drops are silent (the
// caller notes the empty result in its skip row).
func FilterLeadingToken(feedName string, candidates []model.Candidate) []model.Candidate {
	feedCore := normalize.Core(feedName)
	aligned := candidates[:0:0]
	for _, c := range candidates {
		if LeadingTokenAligned(feedCore, normalize.Core(c.Name)) {
			aligned = append(aligned, c)
		}
	}
	return aligned
}

// FilterContent runs the semantic rejection filters in order (sector
// conflict, then fund-vs-company, then hard negatives), dropping candidates
// without reordering survivors. Each drop produces one rejection Decision so
// the audit log explains why a plausible-looking candidate was suppressed.
func FilterContent(feedName, ticker string, candidates []model.Candidate, registryIDs map[string]string, negatives *HardNegatives) ([]model.Candidate, []model.Decision) {
	var rejections []model.Decision
	reject := func(c model.Candidate, kind model.DecisionKind, notes string) {
		rejections = append(rejections, model.Decision{
			Ticker:      ticker,
			FeedName:    feedName,
			Kind:        kind,
			MatchedName: c.Name,
			MatchedID:   registryIDs[c.Name],
			Score:       model.ScoreOf(c.Score),
			Notes:       notes,
		})
	}

	survivors := candidates[:0:0]
	for _, c := range candidates {
		switch {
		case SectorConflict(feedName, c.Name):
			reject(c, model.DecisionSectorConflict, "sector groups conflict")
		case FundVsCompany(feedName, c.Name):
			reject(c, model.DecisionFundVsCompany, "fund/product vs operating company")
		case negatives.Contains(feedName, c.Name):
			reject(c, model.DecisionHardNegative, "hard negative pair")
		default:
			survivors = append(survivors, c)
		}
	}
	return survivors, rejections
}
