package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase and trim",
			input:    "  Apple Inc  ",
			expected: "apple inc",
		},
		{
			name:     "punctuation collapses to spaces",
			input:    "SMITH & SONS, INC.",
			expected: "smith & sons inc",
		},
		{
			name:     "hyphen and slash",
			input:    "Constellation Brands INC-A",
			expected: "constellation brands inc a",
		},
		{
			name:     "slash suffix",
			input:    "Bank of Montreal Co/The",
			expected: "bank of montreal co the",
		},
		{
			name:     "multiple spaces collapse",
			input:    "Extra   Spaces   Corp",
			expected: "extra spaces corp",
		},
		{
			name:     "diacritics fold",
			input:    "Nestlé S.A.",
			expected: "nestle s a",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Name(tt.input))
		})
	}
}

func TestCore(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strip inc",
			input:    "Apple Inc",
			expected: "apple",
		},
		{
			name:     "punctuated and plain agree",
			input:    "ACME, INC.",
			expected: "acme",
		},
		{
			name:     "strip stacked designators",
			input:    "Brookfield Asset Management Holdings Ltd",
			expected: "brookfield asset management",
		},
		{
			name:     "share class marker",
			input:    "Constellation Brands INC-A",
			expected: "constellation brands",
		},
		{
			name:     "class b suffix",
			input:    "Berkshire Hathaway Class B",
			expected: "berkshire hathaway",
		},
		{
			name:     "trailing co the",
			input:    "Bank of Montreal Co/The",
			expected: "bank of montreal",
		},
		{
			name:     "trailing na",
			input:    "Citibank NA",
			expected: "citibank",
		},
		{
			name:     "bancorporation variant",
			input:    "Zions Bancorporation NA",
			expected: "zions bancorp",
		},
		{
			name:     "perpetual preferred pattern",
			input:    "Algonquin Power & Utilities 4 25 Perp",
			expected: "algonquin power & utilities",
		},
		{
			name:     "share class under designator",
			input:    "Fortis Cl B Ltd",
			expected: "fortis",
		},
		{
			name:     "perp pattern under designator",
			input:    "Public Storage PSA 4 PERP Inc",
			expected: "public storage",
		},
		{
			name:     "all designators falls back to normalized",
			input:    "Inc",
			expected: "inc",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Core(tt.input))
		})
	}
}

func TestCoreIdempotent(t *testing.T) {
	inputs := []string{
		"Apple Inc",
		"ACME, INC.",
		"Constellation Brands INC-A",
		"Bank of Montreal Co/The",
		"Zions Bancorporation NA",
		"Inc",
		"Trust Company of America",
		"Fortis Cl B Ltd",
		"Acme Class A Inc",
		"Public Storage PSA 4 PERP Inc",
	}
	for _, in := range inputs {
		once := Core(in)
		assert.Equal(t, once, Core(once), "Core not idempotent for %q", in)
	}
}

func TestCoreMatchesAcrossPunctuation(t *testing.T) {
	// The same company listed with and without punctuation must share a core.
	assert.Equal(t, Core("Acme Inc."), Core("ACME, INC"))
	assert.Equal(t, Core("Rocket Lab USA, Inc."), Core("Rocket Lab USA Inc"))
}

func TestTokens(t *testing.T) {
	tokens := Tokens("First National Bank, Inc.")
	assert.Equal(t, map[string]bool{"first": true, "national": true, "bank": true, "inc": true}, tokens)
	assert.Empty(t, Tokens(""))
}

func TestIsDesignator(t *testing.T) {
	assert.True(t, IsDesignator("inc"))
	assert.True(t, IsDesignator("holdings"))
	assert.False(t, IsDesignator("apple"))
	assert.False(t, IsDesignator("Inc")) // tokens are already lowercased
}
