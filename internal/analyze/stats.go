package analyze

import (
	"github.com/ppiankov/appscope/internal/model"
)

// Stats computes corpus quick stats: rating distribution, polarity shares
// and text sentiment counts
func (e *Engine) Stats(reviews []model.Review) model.Stats {
	stats := model.Stats{
		TotalReviews:    len(reviews),
		RatingCounts:    make(map[int]int),
		SentimentCounts: make(map[model.Sentiment]int),
	}
	if len(reviews) == 0 {
		return stats
	}

	th := e.opts.Thresholds
	sum, positive, negative := 0, 0, 0
	for _, r := range reviews {
		sum += r.Rating
		stats.RatingCounts[r.Rating]++
		stats.SentimentCounts[e.tagger.Tag(r.Body)]++
		if th.Includes(model.PolarityPositive, r.Rating) {
			positive++
		}
		if th.Includes(model.PolarityNegative, r.Rating) {
			negative++
		}
	}

	stats.AverageRating = float64(sum) / float64(len(reviews))
	stats.PositivePercentage, _ = model.Percentage(positive, len(reviews))
	stats.NegativePercentage, _ = model.Percentage(negative, len(reviews))
	return stats
}

// Samples returns up to n reviews per rating band in corpus order, each
// tagged with its text sentiment
func (e *Engine) Samples(reviews []model.Review, n int) model.Samples {
	var s model.Samples
	if n <= 0 {
		return s
	}

	th := e.opts.Thresholds
	for _, r := range reviews {
		sample := model.SampleReview{Review: r, Sentiment: e.tagger.Tag(r.Body)}
		switch {
		case th.Includes(model.PolarityPositive, r.Rating):
			if len(s.Positive) < n {
				s.Positive = append(s.Positive, sample)
			}
		case th.Includes(model.PolarityNegative, r.Rating):
			if len(s.Negative) < n {
				s.Negative = append(s.Negative, sample)
			}
		default:
			if len(s.Neutral) < n {
				s.Neutral = append(s.Neutral, sample)
			}
		}
	}
	return s
}
