// Package model defines the core types shared across the crosswalk pipeline.
package model

import "time"

// FeedEntry is one security from the market-data feed: a display name and its
// active ticker. Duplicate names are collapsed by the feed client before they
// reach the engine (last ticker wins).
type FeedEntry struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// Entity is one canonical company from the internal registry.
type Entity struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Candidate is a registry name ranked against a feed name.
type Candidate struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// DecisionKind classifies the terminal outcome for one feed entry.
type DecisionKind string

// Decision kinds written to the audit log.
const (
	DecisionExact          DecisionKind = "exact"
	DecisionCoreExact      DecisionKind = "core_exact"
	DecisionAutoFuzzy      DecisionKind = "auto_fuzzy"
	DecisionManual         DecisionKind = "manual"
	DecisionRejectedSelf   DecisionKind = "rejected_ticker_self"
	DecisionSectorConflict DecisionKind = "rejected_sector_conflict"
	DecisionFundVsCompany  DecisionKind = "rejected_fund_vs_company"
	DecisionHardNegative   DecisionKind = "rejected_hard_negative"
	DecisionOneToMany      DecisionKind = "one_to_many_prompt"
	DecisionSkipped        DecisionKind = "skipped"
)

// Decision is one audit-log row. Every feed entry produces at least one row;
// candidates dropped by the filter chain produce additional rejection rows.
type Decision struct {
	Ticker      string       `json:"ticker"`
	FeedName    string       `json:"feed_name"`
	Kind        DecisionKind `json:"decision_kind"`
	MatchedName string       `json:"matched_registry_name,omitempty"`
	MatchedID   string       `json:"matched_id,omitempty"`
	Score       *float64     `json:"score,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	At          time.Time    `json:"at"`
}

// ScoreOf wraps a similarity score for a Decision.
func ScoreOf(s float64) *float64 { return &s }
