// Package extract provides the text primitives shared by every analyzer:
// sentence splitting, enclosing-sentence extraction, keyword matching and
// review text cleanup.
package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxLength caps extracted sentences when no limit is given
	DefaultMaxLength = 400

	// minContextRunes is the length under which neighbouring sentences are joined in
	minContextRunes = 50

	ellipsis = "..."
)

// SplitSentences splits text after '.', '!' or '?' when followed by whitespace.
// Terminal punctuation stays with its sentence; the separating whitespace is
// dropped. Segments are returned untrimmed, except that empty segments are
// never returned.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	prev := rune(0)

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) && isTerminal(prev) {
			end := i
			// Consume the whole whitespace run
			j := i
			for j < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[j:])
				if !unicode.IsSpace(r2) {
					break
				}
				j += s2
			}
			if end > start {
				sentences = append(sentences, text[start:end])
			}
			start = j
			i = j
			prev = ' '
			continue
		}
		prev = r
		i += size
	}

	if start < len(text) {
		sentences = append(sentences, text[start:])
	}

	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// ExtractCompleteSentence returns the first sentence of text containing keyword
// (case-insensitive). Sentences shorter than 50 characters are padded with the
// following sentence and, if still short, the preceding one. The result is
// capped at maxLength characters with a trailing "..." when cut.
// ok is false when the keyword does not occur in text.
func ExtractCompleteSentence(text, keyword string, maxLength int) (sentence string, ok bool) {
	kw := strings.ToLower(keyword)
	if kw == "" || !strings.Contains(strings.ToLower(text), kw) {
		return "", false
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	sentences := SplitSentences(text)
	for i, s := range sentences {
		if !strings.Contains(strings.ToLower(s), kw) {
			continue
		}

		result := strings.TrimSpace(s)
		if RuneLen(result) < minContextRunes && i+1 < len(sentences) {
			result += " " + strings.TrimSpace(sentences[i+1])
		}
		if RuneLen(result) < minContextRunes && i > 0 {
			result = strings.TrimSpace(sentences[i-1]) + " " + result
		}

		return Truncate(result, maxLength), true
	}

	// Keyword only spans a sentence boundary
	return "", false
}

// FindSentenceContaining returns the first trimmed sentence whose lowercase
// form contains the lowercase fragment.
func FindSentenceContaining(text, fragment string) (string, bool) {
	needle := strings.ToLower(fragment)
	for _, s := range SplitSentences(text) {
		if strings.Contains(strings.ToLower(s), needle) {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

// RuneLen returns the number of characters in s
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate cuts s to max characters and appends "..." when anything was removed
func Truncate(s string, max int) string {
	if max < 0 || RuneLen(s) <= max {
		return s
	}
	return Prefix(s, max) + ellipsis
}

// Prefix returns the first n characters of s
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
