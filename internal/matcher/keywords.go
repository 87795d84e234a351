// Package matcher decides which feed items become alerts and which
// subscribers a report concerns.
package matcher

import (
	"strings"

	"github.com/peacewatch/peacewatch/internal/feed"
	"github.com/peacewatch/peacewatch/pkg/utils"
)

// KeywordMatcher flags feed items whose title or description contains any of
// the configured keywords, case-insensitively.
type KeywordMatcher struct {
	keywords []string
}

// NewKeywordMatcher lowercases the configured keywords once up front.
func NewKeywordMatcher(keywords []string) *KeywordMatcher {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &KeywordMatcher{keywords: lowered}
}

// Matches reports whether any keyword appears as a substring of the item's
// combined title and description. Pure function, no side effects.
func (m *KeywordMatcher) Matches(item feed.Item) bool {
	text := strings.ToLower(item.Title + " " + item.Description)
	return utils.ContainsAny(text, m.keywords)
}
