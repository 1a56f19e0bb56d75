package analyze

import (
	"strings"
	"unicode"

	"github.com/ppiankov/appscope/internal/model"
)

// Polarity cut-offs for tagging; scores in between are neutral
const (
	positiveCutoff = 0.1
	negativeCutoff = -0.1
)

// Tagger is a lexicon-based sentiment scorer for short review text.
// Each opinion word contributes its weight, scaled by a preceding
// intensifier and flipped at half strength by a negator within the two
// preceding words. The text score is the mean of the contributions.
type Tagger struct {
	lexicon      map[string]float64
	intensifiers map[string]float64
	negators     map[string]bool
}

// NewTagger returns a tagger with the built-in English lexicon
func NewTagger() *Tagger {
	return &Tagger{
		lexicon: map[string]float64{
			// positive
			"love": 0.5, "loved": 0.7, "loving": 0.6, "great": 0.8, "good": 0.7,
			"excellent": 1.0, "amazing": 0.6, "awesome": 1.0, "perfect": 1.0,
			"best": 1.0, "better": 0.5, "nice": 0.6, "easy": 0.43, "simple": 0.3,
			"intuitive": 0.5, "fast": 0.2, "quick": 0.33, "reliable": 0.5,
			"beautiful": 0.85, "clean": 0.37, "helpful": 0.5, "useful": 0.3,
			"fantastic": 0.4, "favorite": 0.5, "happy": 0.8, "wonderful": 1.0,
			"recommend": 0.4, "worth": 0.3, "smooth": 0.4, "stable": 0.3,
			"brilliant": 0.9, "superb": 1.0, "solid": 0.3, "thanks": 0.2,
			"enjoy": 0.4, "glad": 0.5, "lifesaver": 0.8, "fun": 0.3,
			// negative
			"bad": -0.7, "terrible": -1.0, "awful": -1.0, "horrible": -1.0,
			"worst": -1.0, "worse": -0.4, "hate": -0.8, "useless": -0.5,
			"broken": -0.4, "slow": -0.3, "annoying": -0.8, "frustrating": -0.6,
			"frustrated": -0.7, "disappointed": -0.75, "disappointing": -0.6,
			"poor": -0.4, "crash": -0.5, "crashes": -0.5, "crashing": -0.5,
			"buggy": -0.6, "waste": -0.2, "expensive": -0.5, "overpriced": -0.6,
			"confusing": -0.3, "complicated": -0.5, "difficult": -0.5,
			"lost": -0.2, "fail": -0.5, "fails": -0.5, "failed": -0.5,
			"problem": -0.3, "issue": -0.2, "unusable": -0.8, "ridiculous": -0.35,
			"scam": -0.8, "glitchy": -0.5, "laggy": -0.5, "garbage": -0.9,
		},
		intensifiers: map[string]float64{
			"very": 1.3, "really": 1.3, "so": 1.3, "extremely": 1.5,
			"super": 1.3, "absolutely": 1.5, "totally": 1.3, "incredibly": 1.5,
			"quite": 1.1, "pretty": 1.1, "most": 1.3,
		},
		negators: map[string]bool{
			"not": true, "no": true, "never": true, "dont": true, "doesnt": true,
			"didnt": true, "isnt": true, "wasnt": true, "cant": true, "wont": true,
			"cannot": true, "nothing": true, "hardly": true, "arent": true,
		},
	}
}

// Polarity scores text in [-1, 1]. Text without opinion words scores 0.
func (t *Tagger) Polarity(text string) float64 {
	words := tokenize(text)

	var sum float64
	scored := 0
	for i, w := range words {
		weight, ok := t.lexicon[w]
		if !ok {
			continue
		}
		if i > 0 {
			if k, ok := t.intensifiers[words[i-1]]; ok {
				weight *= k
			}
		}
		for back := 1; back <= 2 && i-back >= 0; back++ {
			if t.negators[words[i-back]] {
				weight *= -0.5
				break
			}
		}
		sum += clamp(weight)
		scored++
	}
	if scored == 0 {
		return 0
	}
	return clamp(sum / float64(scored))
}

// Tag classifies text as positive, neutral or negative
func (t *Tagger) Tag(text string) model.Sentiment {
	if strings.TrimSpace(text) == "" {
		return model.SentimentNeutral
	}
	p := t.Polarity(text)
	switch {
	case p > positiveCutoff:
		return model.SentimentPositive
	case p < negativeCutoff:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// tokenize lowercases text and splits it into words. Apostrophes are
// dropped so "don't" and "dont" are the same token.
func tokenize(text string) []string {
	text = strings.NewReplacer("'", "", "’", "").Replace(strings.ToLower(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
