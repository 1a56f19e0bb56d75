package analyze

import (
	"context"
	"fmt"

	"github.com/ppiankov/appscope/internal/extract"
	"github.com/ppiankov/appscope/internal/model"
)

const (
	maxScenarios      = 5
	scenarioMaxLength = 250
	scenarioMinLength = 30 // Scenarios must be strictly longer
)

// forceFindings runs one pass per configured force, in vocabulary order
func (e *Engine) forceFindings(ctx context.Context, reviews []model.Review, w *warnings) []model.Force {
	var forces []model.Force
	for i := range e.forces {
		if ctx.Err() != nil {
			return forces
		}
		f := &e.forces[i]
		w.guard("force/"+string(f.def.Kind), func() {
			if force, ok := e.analyzeForce(f, reviews); ok {
				forces = append(forces, force)
			}
		})
	}
	return forces
}

// analyzeForce takes the first vocabulary hit of each review in the force's
// pool and keeps its enclosing sentence when it is long enough to read as a
// scenario. Count is the number of accepted scenarios before deduplication.
func (e *Engine) analyzeForce(f *compiledForce, reviews []model.Review) (model.Force, bool) {
	pool := e.opts.Thresholds.Pool(reviews, f.def.Pool)

	accepted := 0
	scenarios := extract.NewOrderedSet[string]()
	for _, r := range pool {
		kw, ok := f.matcher.Find(r.Body)
		if !ok {
			continue
		}
		sentence, ok := extract.ExtractCompleteSentence(r.Body, kw, scenarioMaxLength)
		if !ok || extract.RuneLen(sentence) <= scenarioMinLength {
			continue
		}
		accepted++
		scenarios.Add(sentence)
	}
	if accepted == 0 {
		return model.Force{}, false
	}

	return model.Force{
		Kind:      f.def.Kind,
		Label:     f.def.Label,
		Icon:      f.def.Icon,
		Count:     accepted,
		Scenarios: scenarios.Head(maxScenarios),
		Insight:   fmt.Sprintf("%d %s", accepted, f.def.Insight),
	}, true
}
