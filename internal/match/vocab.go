package match

// Fixed vocabulary tables for the heuristic filter chain. Constructed once at
// process start and never mutated.

// sectorGroups clusters industry vocabulary into mutually exclusive topics.
// Two names whose tokens hit disjoint non-empty group sets are talking about
// different industries even when the rest of the words line up (Excellon
// Resources vs Exelon, Rocket Lab vs Rocket Companies).
var sectorGroups = []map[string]bool{
	wordSet("mining", "resources", "silver", "gold", "zinc", "oil", "gas", "exploration", "drilling", "lead"),
	wordSet("utility", "electric", "power", "water"),
	wordSet("bank", "insurance", "financial", "express", "capital", "asset", "management", "fund", "trust", "reit", "mortgage", "loan", "companies"),
	wordSet("paper"),
	wordSet("technology", "digital", "storage", "lab", "labs"),
	wordSet("airline", "aviation", "airways"),
	wordSet("casino", "gaming"),
	wordSet("hotel", "resort", "hospitality"),
	wordSet("exchange", "market"),
	wordSet("aerospace", "space", "satellite", "rocket", "launch"),
	wordSet("cannabis", "green", "hemp", "marijuana"),
	wordSet("nuclear", "atomic"),
	wordSet("property", "real", "estate", "lease"),
	wordSet("industrial", "manufacturing", "pumps", "flow"),
}

// genericOnly are tokens so unspecific that a short ticker whose core name
// consists entirely of them cannot be trusted to auto-match.
var genericOnly = wordSet("international", "global", "world")

// geoGeneric are geographic and scope words; overlap limited to these needs a
// higher bar (Western Gold must not drift onto Western Digital).
var geoGeneric = wordSet(
	"western", "eastern", "northern", "southern",
	"american", "national", "global", "international", "world",
)

// fundIndicators mark fund/product names that must not absorb their parent
// company's mapping (BlackRock Income Trust vs BlackRock).
var fundIndicators = wordSet("trust", "income", "fund", "plc")

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
