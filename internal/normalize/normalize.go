// Package normalize canonicalizes company names for matching. Name produces
// the comparable lowercase form; Core additionally strips legal designators
// and known noise suffixes so similarity scoring focuses on the part of a
// name that actually distinguishes companies.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// designators lists corporate-form suffix words popped from the tail of a
// core name. Order-free set; matching is done word by word from the end.
var designators = map[string]bool{
	"inc": true, "incorporated": true, "corp": true, "corporation": true,
	"llc": true, "ltd": true, "limited": true, "plc": true, "reit": true,
	"lp": true, "co": true, "company": true, "companies": true, "sa": true,
	"ag": true, "nv": true, "adr": true, "group": true, "holdings": true,
	"holding": true, "trust": true, "fund": true, "partners": true,
	"international": true, "industries": true, "energy": true,
	"resources": true, "technologies": true,
}

var (
	punctRe      = regexp.MustCompile(`[.,\-/]+`)
	multiSpaceRe = regexp.MustCompile(`\s+`)

	// Noise suffixes stripped from the normalized form. Punctuation has
	// already collapsed to spaces at this point, so "INC-A" arrives as
	// "inc a" and "Co/The" as "co the".
	bancorpRe    = regexp.MustCompile(`\bbancorporation\b`)
	trailingNARe = regexp.MustCompile(`\s+na$`)
	shareClassRe = regexp.MustCompile(`\s+(inc ?a|class [ab]|cl [ab])$`)
	perpRe       = regexp.MustCompile(`(\s+[a-z0-9]+\s+\d+\s*perp|\s+perp)$`)
	trailingThe  = regexp.MustCompile(`\s+(co )?the$`)
)

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Name normalizes a raw company name: folds diacritics, lowercases, collapses
// punctuation runs and whitespace to single spaces, trims. Total function;
// empty in, empty out.
func Name(s string) string {
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctRe.ReplaceAllString(s, " ")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Core normalizes a name and strips designator and noise suffixes: bank
// holding-company spelling variants, a trailing "NA", share-class markers,
// perpetual-preferred patterns, a trailing "The", and runs of trailing
// designator words. Stripping repeats until a fixpoint, since popping a
// designator can expose another noise suffix ("Fortis Cl B Ltd" loses "ltd"
// first and "cl b" on the next pass). Falls back to the pre-strip normalized
// form rather than returning empty, and is idempotent: Core(Core(x)) == Core(x).
func Core(s string) string {
	if s == "" {
		return ""
	}
	n := Name(s)
	c := bancorpRe.ReplaceAllString(n, "bancorp")
	for {
		prev := c
		c = trailingNARe.ReplaceAllString(c, "")
		c = shareClassRe.ReplaceAllString(c, "")
		c = perpRe.ReplaceAllString(c, "")
		c = trailingThe.ReplaceAllString(c, "")
		words := strings.Fields(c)
		for len(words) > 0 && designators[words[len(words)-1]] {
			words = words[:len(words)-1]
		}
		c = strings.Join(words, " ")
		if c == prev {
			break
		}
	}
	if c == "" {
		return n
	}
	return c
}

// Tokens returns the normalized name as a set of tokens.
func Tokens(s string) map[string]bool {
	fields := strings.Fields(Name(s))
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// IsDesignator reports whether a single normalized token is a corporate-form
// designator word.
func IsDesignator(tok string) bool { return designators[tok] }
