package analyze

import (
	"context"

	"github.com/ppiankov/appscope/internal/extract"
	"github.com/ppiankov/appscope/internal/model"
)

const (
	maxDimensionExamples = 3
	dimensionMaxLength   = 200
)

// dimensions counts, per dimension, the reviews of the pool that mention one
// of its keywords. Every non-empty dimension is returned in vocabulary order.
func (e *Engine) dimensions(ctx context.Context, reviews []model.Review, p model.Polarity, dims []compiledDimension, w *warnings) []model.Dimension {
	pool := e.opts.Thresholds.Pool(reviews, p)
	if len(pool) == 0 {
		return nil
	}

	var out []model.Dimension
	for i := range dims {
		if ctx.Err() != nil {
			return out
		}
		d := &dims[i]
		w.guard(string(p)+"/"+d.name, func() {
			if dim, ok := analyzeDimension(d, pool); ok {
				out = append(out, dim)
			}
		})
	}
	return out
}

func analyzeDimension(d *compiledDimension, pool []model.Review) (model.Dimension, bool) {
	count := 0
	examples := extract.NewOrderedSet[string]()
	for _, r := range pool {
		kw, ok := d.matcher.Find(r.Body)
		if !ok {
			continue
		}
		// A hit counts only when a sentence could be extracted around it
		sentence, ok := extract.ExtractCompleteSentence(r.Body, kw, dimensionMaxLength)
		if !ok {
			continue
		}
		count++
		examples.Add(sentence)
	}
	if count == 0 {
		return model.Dimension{}, false
	}

	pct, ok := model.Percentage(count, len(pool))
	if !ok {
		return model.Dimension{}, false
	}

	return model.Dimension{
		Name:       d.name,
		Count:      count,
		Percentage: pct,
		Examples:   examples.Head(maxDimensionExamples),
	}, true
}
