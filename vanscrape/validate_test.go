package vanscrape

import (
	"strings"
	"testing"
)

func TestValidateBusiness(t *testing.T) {
	cases := []struct {
		name     string
		record   BuilderRecord
		minScore int
		valid    bool
	}{
		{
			name: "strong phrase alone passes",
			record: BuilderRecord{
				Name:        "Acme Van Co",
				Description: "We specialize in custom van conversion projects.",
			},
			minScore: MinBusinessScore,
			valid:    true,
		},
		{
			name: "van model plus generic keyword passes",
			record: BuilderRecord{
				Name:        "Roadrunner Outfitters",
				Description: "Sprinter upfitter for the vanlife community.",
			},
			minScore: MinBusinessScore,
			valid:    true,
		},
		{
			name: "generic keyword alone fails default threshold",
			record: BuilderRecord{
				Name:        "Hill Country Camper Rentals",
				Description: "Rent a camper for your next trip.",
			},
			minScore: MinBusinessScore,
			valid:    false,
		},
		{
			name: "generic keyword alone passes lax threshold",
			record: BuilderRecord{
				Name:        "Hill Country Camper Rentals",
				Description: "Rent a camper for your next trip.",
			},
			minScore: LaxBusinessScore,
			valid:    true,
		},
		{
			name: "food truck excluded regardless of score",
			record: BuilderRecord{
				Name:        "Lone Star Food Truck",
				Description: "Custom van conversion for our sprinter food truck fleet.",
			},
			minScore: MinBusinessScore,
			valid:    false,
		},
		{
			name: "van types contribute to the score",
			record: BuilderRecord{
				Name:     "Trailhead Vans",
				VanTypes: []string{"sprinter", "transit"},
				Services: []string{"electrical"},
			},
			minScore: LaxBusinessScore,
			valid:    true,
		},
		{
			name:     "empty record fails",
			record:   BuilderRecord{},
			minScore: MinBusinessScore,
			valid:    false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateBusiness(&tc.record, tc.minScore)
			if got.IsValid != tc.valid {
				t.Fatalf("IsValid = %v, want %v (score %d, reason %q)", got.IsValid, tc.valid, got.Score, got.Reason)
			}
		})
	}
}

func TestValidateBusiness_ExclusionReason(t *testing.T) {
	r := BuilderRecord{Name: "Taco Truck Builders"}

	got := ValidateBusiness(&r, MinBusinessScore)

	if got.IsValid {
		t.Fatal("expected exclusion")
	}

	if !strings.HasPrefix(got.Reason, "wrong business category: ") {
		t.Fatalf("unexpected reason %q", got.Reason)
	}
}

func TestValidateBusiness_ScoreCapsAtOnePerTable(t *testing.T) {
	r := BuilderRecord{
		Description: "van conversion and campervan conversion on sprinter and transit chassis, camper vanlife overland",
	}

	got := ValidateBusiness(&r, MinBusinessScore)

	want := weightStrongPhrase + weightVanModel + weightGenericWord
	if got.Score != want {
		t.Fatalf("score = %d, want %d", got.Score, want)
	}
}
