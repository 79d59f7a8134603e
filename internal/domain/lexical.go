package domain

import (
	"strings"
	"time"
)

// KeywordRules is the policy table for the lexical filter. Matching is
// case-insensitive substring over both free-text fields.
type KeywordRules struct {
	Include []string
	Exclude []string
}

// FilterCounts records how many observations each predicate dropped.
// The cutoff predicate runs last so the counts show how far each record got.
type FilterCounts struct {
	Input        int `json:"input"`
	NoInclusion  int `json:"no_inclusion"`
	ExclusionHit int `json:"exclusion_hit"`
	BeforeCutoff int `json:"before_cutoff"`
	Kept         int `json:"kept"`
}

// FilterObservations returns the subsequence of obs whose free-text fields
// contain at least one inclusion keyword, contain no exclusion keyword, and
// whose observation date is on or after cutoff. The three predicates are
// conjunctive; order only affects which counter a dropped record lands in.
// A missing text field matches no keywords; it is not an error.
func FilterObservations(obs []Observation, rules KeywordRules, cutoff time.Time) ([]Observation, FilterCounts) {
	counts := FilterCounts{Input: len(obs)}
	kept := make([]Observation, 0, len(obs))

	for _, o := range obs {
		tags := strings.ToLower(o.TagText())
		desc := strings.ToLower(o.Description)

		if !containsAny(tags, desc, rules.Include) {
			counts.NoInclusion++
			continue
		}
		if containsAny(tags, desc, rules.Exclude) {
			counts.ExclusionHit++
			continue
		}
		if o.ObservedOn.IsZero() || o.ObservedOn.Before(cutoff) {
			counts.BeforeCutoff++
			continue
		}
		kept = append(kept, o)
	}

	counts.Kept = len(kept)
	return kept, counts
}

// containsAny reports whether either lowercased field contains any of the
// keywords as a substring. Keywords are lowercased here so the rule file
// does not have to be.
func containsAny(tags, desc string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(tags, kw) || strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}
