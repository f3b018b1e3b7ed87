package vanscrape

import "strings"

// stateAbbrevs maps canonical full state names to their postal codes.
var stateAbbrevs = map[string]string{
	"Alabama":        "AL",
	"Alaska":         "AK",
	"Arizona":        "AZ",
	"Arkansas":       "AR",
	"California":     "CA",
	"Colorado":       "CO",
	"Connecticut":    "CT",
	"Delaware":       "DE",
	"Florida":        "FL",
	"Georgia":        "GA",
	"Hawaii":         "HI",
	"Idaho":          "ID",
	"Illinois":       "IL",
	"Indiana":        "IN",
	"Iowa":           "IA",
	"Kansas":         "KS",
	"Kentucky":       "KY",
	"Louisiana":      "LA",
	"Maine":          "ME",
	"Maryland":       "MD",
	"Massachusetts":  "MA",
	"Michigan":       "MI",
	"Minnesota":      "MN",
	"Mississippi":    "MS",
	"Missouri":       "MO",
	"Montana":        "MT",
	"Nebraska":       "NE",
	"Nevada":         "NV",
	"New Hampshire":  "NH",
	"New Jersey":     "NJ",
	"New Mexico":     "NM",
	"New York":       "NY",
	"North Carolina": "NC",
	"North Dakota":   "ND",
	"Ohio":           "OH",
	"Oklahoma":       "OK",
	"Oregon":         "OR",
	"Pennsylvania":   "PA",
	"Rhode Island":   "RI",
	"South Carolina": "SC",
	"South Dakota":   "SD",
	"Tennessee":      "TN",
	"Texas":          "TX",
	"Utah":           "UT",
	"Vermont":        "VT",
	"Virginia":       "VA",
	"Washington":     "WA",
	"West Virginia":  "WV",
	"Wisconsin":      "WI",
	"Wyoming":        "WY",
}

// StateAbbrev returns the postal code for a full state name, or "" when
// the name is not a US state.
func StateAbbrev(state string) string {
	return stateAbbrevs[CanonicalState(state)]
}

// CanonicalState normalizes a state name or postal code to the canonical
// full name ("tx" and "texas" both yield "Texas"). Unknown input returns
// the trimmed original.
func CanonicalState(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if len(s) == 2 {
		up := strings.ToUpper(s)
		for name, ab := range stateAbbrevs {
			if ab == up {
				return name
			}
		}
	}

	lower := strings.ToLower(s)
	for name := range stateAbbrevs {
		if strings.ToLower(name) == lower {
			return name
		}
	}

	return s
}

// IsState reports whether s names a US state (full name or postal code).
func IsState(s string) bool {
	_, ok := stateAbbrevs[CanonicalState(s)]
	return ok
}

// StateNames returns all canonical state names. Order is unspecified.
func StateNames() []string {
	names := make([]string, 0, len(stateAbbrevs))
	for name := range stateAbbrevs {
		names = append(names, name)
	}

	return names
}
