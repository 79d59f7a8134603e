package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRules = KeywordRules{
	Include: []string{"dead", "carcass"},
	Exclude: []string{"skeleton", "bones"},
}

func obsWith(id int64, observed time.Time, tags []string, desc string) Observation {
	return Observation{ID: id, ObservedOn: observed, Tags: tags, Description: desc}
}

func TestFilterObservations_Scenario(t *testing.T) {
	cutoff := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC)
	before := time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC)

	input := []Observation{
		obsWith(1, after, []string{"dead"}, "found below the cliff"),
		obsWith(2, after, nil, "fresh carcass, dead for a day at most"),
		obsWith(3, after, []string{"dead"}, "washed up skeleton"),
		obsWith(4, before, nil, "dead adult on the roadside"),
		obsWith(5, after, []string{"soaring"}, "circling over the gorge"),
	}

	kept, counts := FilterObservations(input, testRules, cutoff)

	require.Len(t, kept, 2)
	assert.Equal(t, int64(1), kept[0].ID)
	assert.Equal(t, int64(2), kept[1].ID)

	assert.Equal(t, 5, counts.Input)
	assert.Equal(t, 1, counts.NoInclusion)
	assert.Equal(t, 1, counts.ExclusionHit)
	assert.Equal(t, 1, counts.BeforeCutoff)
	assert.Equal(t, 2, counts.Kept)
}

func TestFilterObservations_CaseFolding(t *testing.T) {
	cutoff := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	observed := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		obs  Observation
		kept bool
	}{
		{"uppercase tag", obsWith(1, observed, []string{"DEAD"}, ""), true},
		{"mixed case description", obsWith(2, observed, nil, "Dead Vulture near the feeding station"), true},
		{"uppercase exclusion", obsWith(3, observed, []string{"dead"}, "only a SKELETON left"), false},
		{"keyword inside word", obsWith(4, observed, nil, "deadwood pile"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, _ := FilterObservations([]Observation{tt.obs}, testRules, cutoff)
			if tt.kept {
				assert.Len(t, kept, 1)
			} else {
				assert.Empty(t, kept)
			}
		})
	}
}

func TestFilterObservations_MissingTextFields(t *testing.T) {
	cutoff := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	observed := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	// No text at all: matches no inclusion keyword, dropped without error.
	kept, counts := FilterObservations([]Observation{obsWith(1, observed, nil, "")}, testRules, cutoff)
	assert.Empty(t, kept)
	assert.Equal(t, 1, counts.NoInclusion)

	// Keyword in tags only, empty description.
	kept, _ = FilterObservations([]Observation{obsWith(2, observed, []string{"carcass"}, "")}, testRules, cutoff)
	assert.Len(t, kept, 1)
}

func TestFilterObservations_CutoffBoundary(t *testing.T) {
	cutoff := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	// Observed exactly on the cutoff date is kept ("on or after").
	onCutoff := obsWith(1, cutoff, []string{"dead"}, "")
	kept, _ := FilterObservations([]Observation{onCutoff}, testRules, cutoff)
	require.Len(t, kept, 1)

	// A zero observation date fails the cutoff rather than passing silently.
	noDate := obsWith(2, time.Time{}, []string{"dead"}, "")
	kept, counts := FilterObservations([]Observation{noDate}, testRules, cutoff)
	assert.Empty(t, kept)
	assert.Equal(t, 1, counts.BeforeCutoff)
}

func TestFilterObservations_EmptyRuleEntriesIgnored(t *testing.T) {
	cutoff := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	observed := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := KeywordRules{Include: []string{"", "  ", "dead"}, Exclude: []string{""}}

	// Blank keywords must not match everything.
	kept, _ := FilterObservations([]Observation{obsWith(1, observed, nil, "nothing of note")}, rules, cutoff)
	assert.Empty(t, kept)

	kept, _ = FilterObservations([]Observation{obsWith(2, observed, nil, "dead bird")}, rules, cutoff)
	assert.Len(t, kept, 1)
}
