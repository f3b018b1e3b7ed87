package vanscrape

import "strings"

// Acceptance thresholds for business-type validation. MinBusinessScore
// is the default; LaxBusinessScore matches the historical lenient
// behavior and stays selectable until the intended strictness is
// confirmed.
const (
	MinBusinessScore = 2
	LaxBusinessScore = 1
)

const (
	weightStrongPhrase = 3
	weightVanModel     = 2
	weightGenericWord  = 1
)

// Businesses that match these are never builders, whatever else the
// page says.
var exclusionKeywords = []string{
	"food truck",
	"food trailer",
	"catering",
	"mobile kitchen",
	"concession trailer",
	"coffee cart",
	"ice cream truck",
	"taco truck",
}

var strongPhrases = []string{
	"van conversion",
	"camper van builder",
	"campervan conversion",
	"custom camper van",
	"van build",
	"adventure van",
	"conversion van company",
}

var vanModels = []string{
	"sprinter",
	"transit",
	"promaster",
	"metris",
	"sprinter 144",
	"sprinter 170",
	"econoline",
	"express van",
}

var genericKeywords = []string{
	"conversion",
	"custom build",
	"upfitter",
	"camper",
	"vanlife",
	"off-grid",
	"overland",
}

// BusinessValidation classifies whether extracted content describes a
// van-conversion builder.
type BusinessValidation struct {
	IsValid bool   `json:"is_valid"`
	Score   int    `json:"score"`
	Reason  string `json:"reason"`
}

// ValidateBusiness scores the record's combined text against the
// keyword tables. A hard-exclusion hit rejects regardless of score.
func ValidateBusiness(r *BuilderRecord, minScore int) BusinessValidation {
	parts := []string{r.Name, r.Description}
	parts = append(parts, r.VanTypes...)
	parts = append(parts, r.Amenities...)

	text := strings.ToLower(strings.Join(parts, " "))

	for _, kw := range exclusionKeywords {
		if strings.Contains(text, kw) {
			return BusinessValidation{IsValid: false, Reason: "wrong business category: " + kw}
		}
	}

	score := 0

	for _, phrase := range strongPhrases {
		if strings.Contains(text, phrase) {
			score += weightStrongPhrase
			break
		}
	}

	for _, model := range vanModels {
		if strings.Contains(text, model) {
			score += weightVanModel
			break
		}
	}

	for _, kw := range genericKeywords {
		if strings.Contains(text, kw) {
			score += weightGenericWord
			break
		}
	}

	if score < minScore {
		return BusinessValidation{IsValid: false, Score: score, Reason: "insufficient van-builder signals"}
	}

	return BusinessValidation{IsValid: true, Score: score, Reason: "van-builder keywords matched"}
}
