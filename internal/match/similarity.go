package match

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Ratio scores two strings 0-100 by edit distance normalized over the
// combined length. Symmetric; 100 only for identical strings. The combined
// denominator keeps one-letter spelling variants of medium-length words above
// the 85 filter thresholds (excellon/exelon scores 85.7) while short symbol
// lookalikes stay below (ng/nrg scores 80).
func Ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(dist)/float64(total))
}

// TokenSortRatio scores two strings order-insensitively: tokens are sorted
// and rejoined before edit-distance scoring, so "brands constellation" and
// "constellation brands" score 100. Returns 100 only for identical token
// multisets.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}
