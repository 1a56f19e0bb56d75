package extract

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// invisible matches format characters (zero-width spaces, joiners, BOM) and
// control characters other than ordinary whitespace.
var invisible = runes.Predicate(func(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return false
	}
	return unicode.Is(unicode.Cf, r) || unicode.IsControl(r)
})

// markupTag matches a complete tag of an element reviews actually carry.
// A bare "<" in prose ("<a lot of items", "<3") is not markup.
var markupTag = regexp.MustCompile(`(?i)</?(a|b|blockquote|br|code|div|em|font|h[1-6]|i|img|li|ol|p|pre|script|small|span|strong|style|sub|sup|u|ul|noscript|iframe)\b[^<>]*>`)

// CleanText turns a raw review field into plain analyzable text: markup is
// stripped, entities are decoded, invisible characters are removed and the
// result is NFC-normalized.
func CleanText(raw string) string {
	text := raw
	switch {
	case markupTag.MatchString(text):
		text = stripMarkup(text)
	case strings.Contains(text, "&"):
		text = html.UnescapeString(text)
	}

	t := transform.Chain(norm.NFC, runes.Remove(invisible))
	cleaned, _, err := transform.String(t, text)
	if err != nil {
		return strings.TrimSpace(text)
	}

	return strings.TrimSpace(cleaned)
}

// stripMarkup extracts visible text nodes, skipping scripts/styles
func stripMarkup(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return html.UnescapeString(fragment)
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			case "br", "p", "div", "li":
				buf.WriteString(" ")
			}
		}

		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return buf.String()
}
