package analyze

import (
	"context"
	"sort"

	"github.com/ppiankov/appscope/internal/extract"
	"github.com/ppiankov/appscope/internal/model"
)

const (
	maxThemes        = 5
	maxThemeExamples = 3
)

// categoryFindings runs the complaint (negative) or praise (positive)
// analysis. Categories are ordered by total count, ties keeping vocabulary
// order.
func (e *Engine) categoryFindings(ctx context.Context, reviews []model.Review, p model.Polarity, w *warnings) []model.CategoryFinding {
	pool := e.opts.Thresholds.Pool(reviews, p)
	if len(pool) == 0 {
		return nil
	}

	var findings []model.CategoryFinding
	for i := range e.categories {
		if ctx.Err() != nil {
			return findings
		}
		c := &e.categories[i]
		w.guard(string(p)+"/"+c.def.ID, func() {
			if f, ok := analyzeCategory(c, pool, p); ok {
				findings = append(findings, f)
			}
		})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].TotalCount > findings[j].TotalCount
	})
	return findings
}

// analyzeCategory collects one sentence per review that mentions the
// category, then clusters the sentences into themes.
func analyzeCategory(c *compiledCategory, pool []model.Review, p model.Polarity) (model.CategoryFinding, bool) {
	var candidates []string
	for _, r := range pool {
		kw, ok := c.matcher.Find(r.Body)
		if !ok {
			continue
		}
		if sentence, ok := extract.ExtractCompleteSentence(r.Body, kw, extract.DefaultMaxLength); ok && sentence != "" {
			candidates = append(candidates, sentence)
		}
	}
	if len(candidates) == 0 {
		return model.CategoryFinding{}, false
	}

	pct, ok := model.Percentage(len(candidates), len(pool))
	if !ok {
		return model.CategoryFinding{}, false
	}

	return model.CategoryFinding{
		ID:         c.def.ID,
		Name:       c.def.Name,
		Icon:       c.def.Icon,
		TotalCount: len(candidates),
		Percentage: pct,
		Themes:     clusterThemes(candidates, c.themes(p)),
	}, true
}

// clusterThemes assigns sentences to every theme whose sub-keywords they
// contain. Membership is independent per theme, so one sentence may count
// toward several themes.
func clusterThemes(sentences []string, themes []compiledTheme) []model.Theme {
	var out []model.Theme
	for _, t := range themes {
		var matching []string
		for _, s := range sentences {
			if t.matcher.Contains(s) {
				matching = append(matching, s)
			}
		}
		if len(matching) == 0 {
			continue
		}

		examples := matching
		if len(examples) > maxThemeExamples {
			examples = examples[:maxThemeExamples]
		}
		out = append(out, model.Theme{
			Name:     t.name,
			Count:    len(matching),
			Examples: append([]string(nil), examples...),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > maxThemes {
		out = out[:maxThemes]
	}
	return out
}
