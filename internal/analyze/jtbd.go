package analyze

import (
	"regexp"
	"strings"

	"github.com/ppiankov/appscope/internal/extract"
	"github.com/ppiankov/appscope/internal/model"
)

const (
	maxJTBD           = 10
	jtbdMinLength     = 20 // Exclusive bounds on statement length
	jtbdMaxLength     = 300
	jtbdContextLength = 300
	jtbdDedupePrefix  = 30
)

// JTBD extracts verbatim job statements from the first JTBDSampleSize
// positive reviews. Templates are tried in priority order; each template
// contributes at most its first match per review. Statements are
// deduplicated on their lowercased 30 character prefix and capped at 10.
func (e *Engine) JTBD(reviews []model.Review) []model.JTBDStatement {
	sample := e.opts.Thresholds.Pool(reviews, model.PolarityPositive)
	if n := e.opts.JTBDSampleSize; n > 0 && len(sample) > n {
		sample = sample[:n]
	}

	var found []model.JTBDStatement
	for _, r := range sample {
		found = append(found, e.statementsFor(r.Body)...)
	}

	prefixes := extract.NewOrderedSet[string]()
	var out []model.JTBDStatement
	for _, st := range found {
		if !prefixes.Add(strings.ToLower(extract.Prefix(st.Statement, jtbdDedupePrefix))) {
			continue
		}
		out = append(out, st)
		if len(out) == maxJTBD {
			break
		}
	}
	return out
}

// statementsFor runs the templates against one review
func (e *Engine) statementsFor(text string) []model.JTBDStatement {
	if text == "" {
		return nil
	}

	var out []model.JTBDStatement
	for _, re := range e.jtbd.patterns {
		match := re.FindString(text)
		if match == "" {
			continue
		}
		sentence, ok := extract.FindSentenceContaining(text, match)
		if !ok {
			continue
		}
		if n := extract.RuneLen(sentence); n <= jtbdMinLength || n >= jtbdMaxLength {
			continue
		}

		situation, outcome := e.components(sentence)
		out = append(out, model.JTBDStatement{
			Statement:  sentence,
			FullReview: extract.Prefix(text, jtbdContextLength),
			Situation:  situation,
			Outcome:    outcome,
		})
		if e.opts.JTBDOnePerReview {
			break
		}
	}
	return out
}

// components returns the first situation and outcome signal in the
// lowercased statement
func (e *Engine) components(statement string) (situation, outcome string) {
	lower := strings.ToLower(statement)
	return firstMatch(e.jtbd.situations, lower), firstMatch(e.jtbd.outcomes, lower)
}

// Components exposes situation/outcome detection for arbitrary text
func (e *Engine) Components(text string) (situation, outcome string) {
	return e.components(text)
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}
