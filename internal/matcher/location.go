package matcher

import "strings"

// LocationMatcher decides whether a subscriber's declared location concerns
// a report's location. It is an interface so the substring heuristic can be
// swapped for a controlled vocabulary or geocoding later without touching
// the dispatcher.
type LocationMatcher interface {
	Matches(subscriberLocation, reportLocation string) bool
}

// SubstringLocationMatcher implements the observed heuristic: a match when
// either location is a case-insensitive substring of the other, or when the
// two compare equal after stripping the word "state" and trimming. Imprecise
// by design; a known limitation, not a bug.
type SubstringLocationMatcher struct{}

// NewLocationMatcher returns the default substring matcher
func NewLocationMatcher() *SubstringLocationMatcher {
	return &SubstringLocationMatcher{}
}

// Matches applies the bidirectional substring check, then the
// normalized-name equality check. Either succeeding is sufficient.
func (m *SubstringLocationMatcher) Matches(subscriberLocation, reportLocation string) bool {
	sub := strings.ToLower(strings.TrimSpace(subscriberLocation))
	rep := strings.ToLower(strings.TrimSpace(reportLocation))
	if sub == "" || rep == "" {
		return false
	}

	if strings.Contains(sub, rep) || strings.Contains(rep, sub) {
		return true
	}

	return normalizeName(sub) == normalizeName(rep)
}

func normalizeName(s string) string {
	s = strings.ReplaceAll(s, "state", "")
	return strings.TrimSpace(s)
}
