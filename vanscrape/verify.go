package vanscrape

import (
	"fmt"
	"regexp"
	"strings"
)

// MinLocationScore is the acceptance threshold for location verification.
const MinLocationScore = 3

// Weights for each verification signal. Tuning a weight is a change
// here, not a code edit at a call site.
const (
	weightStateMention   = 3
	weightZipPattern     = 2
	weightAreaCode       = 2
	weightAreaCodeCap    = 4
	weightLocationPhrase = 3
	weightOtherState     = -5
	weightDirectorySite  = -10
)

var (
	zipRe      = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	areaCodeRe = regexp.MustCompile(`\(?\b([2-9]\d{2})\)?[-.\s]\d{3}[-.\s]?\d{4}`)
)

var directoryPhrases = []string{
	"business directory",
	"find businesses near you",
	"local listings",
	"yellow pages",
	"top 10 best",
	"browse all categories",
}

// LocationVerification is the outcome of the heuristic location check.
// It is a confidence score, not a proof; false positives and negatives
// are expected.
type LocationVerification struct {
	Verified bool     `json:"verified"`
	Score    int      `json:"score"`
	Reasons  []string `json:"reasons"`
}

// VerifyLocation scores how strongly the page text ties the business to
// the target state. Signals only ever add their declared weight, so
// adding a matching signal never lowers the score.
func VerifyLocation(text, state string) LocationVerification {
	state = CanonicalState(state)

	var v LocationVerification

	lower := strings.ToLower(text)
	stateLower := strings.ToLower(state)

	if stateLower != "" && strings.Contains(lower, stateLower) {
		v.Score += weightStateMention
		v.Reasons = append(v.Reasons, fmt.Sprintf("mentions %s", state))
	}

	if zipRe.MatchString(text) {
		v.Score += weightZipPattern
		v.Reasons = append(v.Reasons, "zip code present")
	}

	if pts, codes := areaCodePoints(text, state); pts > 0 {
		v.Score += pts
		v.Reasons = append(v.Reasons, fmt.Sprintf("area code match: %s", strings.Join(codes, ",")))
	}

	if hasLocationPhrase(lower, stateLower) {
		v.Score += weightLocationPhrase
		v.Reasons = append(v.Reasons, fmt.Sprintf("located-in phrase for %s", state))
	}

	if other := otherStatePhrase(lower, state); other != "" {
		v.Score += weightOtherState
		v.Reasons = append(v.Reasons, fmt.Sprintf("located-in phrase for different state: %s", other))
	}

	for _, phrase := range directoryPhrases {
		if strings.Contains(lower, phrase) {
			v.Score += weightDirectorySite
			v.Reasons = append(v.Reasons, "directory-site phrasing")

			break
		}
	}

	v.Verified = v.Score >= MinLocationScore

	return v
}

// areaCodePoints awards weightAreaCode per distinct in-state area code
// seen in a phone-shaped context, capped at weightAreaCodeCap.
func areaCodePoints(text, state string) (int, []string) {
	codes := AreaCodesForState(state)
	if len(codes) == 0 {
		return 0, nil
	}

	inState := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		inState[c] = struct{}{}
	}

	var matched []string

	seen := map[string]struct{}{}

	for _, m := range areaCodeRe.FindAllStringSubmatch(text, -1) {
		code := m[1]
		if _, ok := inState[code]; !ok {
			continue
		}

		if _, dup := seen[code]; dup {
			continue
		}

		seen[code] = struct{}{}

		matched = append(matched, code)
	}

	pts := len(matched) * weightAreaCode
	if pts > weightAreaCodeCap {
		pts = weightAreaCodeCap
	}

	return pts, matched
}

func hasLocationPhrase(lower, stateLower string) bool {
	if stateLower == "" {
		return false
	}

	for _, prefix := range []string{"based in ", "located in ", "serving ", "proudly serving "} {
		if strings.Contains(lower, prefix+stateLower) {
			return true
		}
	}

	return false
}

// otherStatePhrase returns the first state other than the target that
// appears in an explicit located-in phrase.
func otherStatePhrase(lower, target string) string {
	for _, name := range StateNames() {
		if name == target {
			continue
		}

		if hasLocationPhrase(lower, strings.ToLower(name)) {
			return name
		}
	}

	return ""
}
