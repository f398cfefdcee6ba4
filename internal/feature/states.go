package feature

import "strings"

// StateUnknown is the state code assigned when no state can be extracted.
const StateUnknown = "UNKNOWN"

// stateCodes are the 50 two-letter US state codes.
var stateCodes = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
	"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
}

// stateNames is an ordered list of full state names, matched top to bottom.
// Names that contain another state's name as a substring come first
// (arkansas before kansas, west virginia before virginia) so extraction is
// deterministic regardless of input.
var stateNames = []struct {
	name string
	code string
}{
	{"west virginia", "WV"},
	{"north carolina", "NC"},
	{"south carolina", "SC"},
	{"north dakota", "ND"},
	{"south dakota", "SD"},
	{"new hampshire", "NH"},
	{"new jersey", "NJ"},
	{"new mexico", "NM"},
	{"new york", "NY"},
	{"rhode island", "RI"},
	{"arkansas", "AR"},
	{"alabama", "AL"},
	{"alaska", "AK"},
	{"arizona", "AZ"},
	{"california", "CA"},
	{"colorado", "CO"},
	{"connecticut", "CT"},
	{"delaware", "DE"},
	{"florida", "FL"},
	{"georgia", "GA"},
	{"hawaii", "HI"},
	{"idaho", "ID"},
	{"illinois", "IL"},
	{"indiana", "IN"},
	{"iowa", "IA"},
	{"kansas", "KS"},
	{"kentucky", "KY"},
	{"louisiana", "LA"},
	{"maine", "ME"},
	{"maryland", "MD"},
	{"massachusetts", "MA"},
	{"michigan", "MI"},
	{"minnesota", "MN"},
	{"mississippi", "MS"},
	{"missouri", "MO"},
	{"montana", "MT"},
	{"nebraska", "NE"},
	{"nevada", "NV"},
	{"ohio", "OH"},
	{"oklahoma", "OK"},
	{"oregon", "OR"},
	{"pennsylvania", "PA"},
	{"tennessee", "TN"},
	{"texas", "TX"},
	{"utah", "UT"},
	{"vermont", "VT"},
	{"virginia", "VA"},
	{"washington", "WA"},
	{"wisconsin", "WI"},
	{"wyoming", "WY"},
}

// ExtractState normalizes a free-text location into a state code. The state
// field is checked first, then the description as a fallback; UNKNOWN when
// neither yields a match.
func ExtractState(stateField, description string) string {
	if code := extractFrom(stateField); code != "" {
		return code
	}
	if code := extractFrom(description); code != "" {
		return code
	}
	return StateUnknown
}

func extractFrom(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	// Exact code, e.g. "TX".
	upper := strings.ToUpper(text)
	if len(upper) == 2 && isStateCode(upper) {
		return upper
	}

	// Full state name anywhere in the text.
	lower := strings.ToLower(text)
	for _, s := range stateNames {
		if strings.Contains(lower, s.name) {
			return s.code
		}
	}

	// Code as a standalone token, e.g. "Houston, TX" or "El Paso TX Field Office".
	for _, token := range strings.FieldsFunc(upper, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == '(' || r == ')' || r == '.'
	}) {
		if len(token) == 2 && isStateCode(token) {
			return token
		}
	}
	return ""
}

func isStateCode(s string) bool {
	for _, code := range stateCodes {
		if s == code {
			return true
		}
	}
	return false
}
