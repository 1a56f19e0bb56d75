package extract

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// FindKeyword returns the first keyword, in list order, whose lowercase form
// occurs in the lowercased text. It is a pure first-match scan with no
// relevance ranking.
func FindKeyword(text string, keywords []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		normalized := strings.ToLower(kw)
		if normalized == "" {
			continue
		}
		if strings.Contains(lower, normalized) {
			return kw, true
		}
	}
	return "", false
}

// Matcher is a precompiled keyword list. Find returns the same answer as
// FindKeyword but scans the text once with an Aho-Corasick automaton
// instead of once per keyword. A Matcher is safe for concurrent use.
type Matcher struct {
	keywords []string // As given, in priority order
	patterns []string // Lowercased, deduplicated automaton dictionary
	priority []int    // patterns[i] -> index of its first occurrence in keywords
	ac       *ahocorasick.Matcher
}

// NewMatcher builds a matcher over keywords. Empty keywords are ignored.
func NewMatcher(keywords []string) *Matcher {
	m := &Matcher{
		keywords: append([]string(nil), keywords...),
	}

	seen := make(map[string]bool, len(keywords))
	for idx, kw := range keywords {
		normalized := strings.ToLower(kw)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		m.patterns = append(m.patterns, normalized)
		m.priority = append(m.priority, idx)
	}

	if len(m.patterns) > 0 {
		m.ac = ahocorasick.NewStringMatcher(m.patterns)
	}

	return m
}

// Keywords returns the keyword list in priority order
func (m *Matcher) Keywords() []string {
	return m.keywords
}

// Find returns the highest-priority keyword occurring in text
func (m *Matcher) Find(text string) (string, bool) {
	if m.ac == nil || text == "" {
		return "", false
	}

	// Match mutates per-node hit counters; a Matcher is shared by
	// concurrent analyzers
	hits := m.ac.MatchThreadSafe([]byte(strings.ToLower(text)))
	if len(hits) == 0 {
		return "", false
	}

	best := -1
	for _, hit := range hits {
		if hit < 0 || hit >= len(m.priority) {
			continue
		}
		if best == -1 || m.priority[hit] < best {
			best = m.priority[hit]
		}
	}
	if best == -1 {
		return "", false
	}

	return m.keywords[best], true
}

// Contains reports whether any keyword occurs in text
func (m *Matcher) Contains(text string) bool {
	_, ok := m.Find(text)
	return ok
}
