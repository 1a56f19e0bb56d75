// Package score builds the executive summary of a report: the leading risk
// and strength, plus diagnostic signals about the corpus itself.
package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/appscope/internal/extract"
	"github.com/ppiankov/appscope/internal/model"
)

const (
	excerptLength = 80

	// thinCorpus is the review count below which findings are anecdotal
	thinCorpus = 20
	// sparseCorpus is the count below which findings are essentially noise
	sparseCorpus = 5
)

// Scorer derives the summary and signals from stats and findings
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Summarize picks the top risk and strength and generates diagnostic signals
func (s *Scorer) Summarize(stats model.Stats, analysis *model.Analysis) model.Summary {
	summary := model.Summary{Signals: []model.Signal{}}
	if analysis != nil {
		summary.TopRisk = highlight(analysis.Complaints)
		summary.TopStrength = highlight(analysis.Praise)
	}

	if stats.TotalReviews == 0 {
		summary.Signals = append(summary.Signals, model.Signal{
			Type:        model.SignalThinCorpus,
			Severity:    model.SeverityCritical,
			Description: "No reviews to analyze",
			Data:        map[string]interface{}{"reviews": 0},
		})
		return summary
	}

	if sig, ok := s.thinCorpus(stats); ok {
		summary.Signals = append(summary.Signals, sig)
	}
	summary.Signals = append(summary.Signals, s.negativeShare(stats))
	if analysis != nil {
		if sig, ok := s.complaintConcentration(analysis.Complaints); ok {
			summary.Signals = append(summary.Signals, sig)
		}
	}
	if sig, ok := s.sentimentMismatch(stats); ok {
		summary.Signals = append(summary.Signals, sig)
	}

	return summary
}

// highlight returns the first theme of the leading category. Findings are
// already ordered by total count.
func highlight(findings []model.CategoryFinding) *model.Highlight {
	if len(findings) == 0 || len(findings[0].Themes) == 0 {
		return nil
	}
	top := findings[0]
	theme := top.Themes[0]

	h := &model.Highlight{
		Category: top.Name,
		Theme:    theme.Name,
		Count:    theme.Count,
	}
	if len(theme.Examples) > 0 {
		h.Excerpt = extract.Truncate(theme.Examples[0], excerptLength)
	}
	return h
}

// thinCorpus flags corpora too small for stable percentages
func (s *Scorer) thinCorpus(stats model.Stats) (model.Signal, bool) {
	if stats.TotalReviews >= thinCorpus {
		return model.Signal{}, false
	}

	severity := model.SeverityWarning
	if stats.TotalReviews < sparseCorpus {
		severity = model.SeverityCritical
	}

	return model.Signal{
		Type:        model.SignalThinCorpus,
		Severity:    severity,
		Description: fmt.Sprintf("Only %d reviews analyzed; percentages are unstable", stats.TotalReviews),
		Data: map[string]interface{}{
			"reviews":   stats.TotalReviews,
			"threshold": thinCorpus,
		},
	}, true
}

// negativeShare reports the share of low-rated reviews
func (s *Scorer) negativeShare(stats model.Stats) model.Signal {
	pct := stats.NegativePercentage

	severity := model.SeverityInfo
	if pct >= 40 {
		severity = model.SeverityCritical
	} else if pct >= 20 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalNegativeShare,
		Severity:    severity,
		Description: fmt.Sprintf("Negative reviews: %.0f%% of %d", pct, stats.TotalReviews),
		Data: map[string]interface{}{
			"percentage":     pct,
			"total":          stats.TotalReviews,
			"average_rating": stats.AverageRating,
			"formula":        "negative_count / total * 100",
		},
	}
}

// complaintConcentration flags a single category dominating complaints
func (s *Scorer) complaintConcentration(complaints []model.CategoryFinding) (model.Signal, bool) {
	if len(complaints) == 0 {
		return model.Signal{}, false
	}

	total := 0
	for _, c := range complaints {
		total += c.TotalCount
	}
	if total == 0 {
		return model.Signal{}, false
	}

	top := complaints[0]
	share := float64(top.TotalCount) / float64(total)

	severity := model.SeverityInfo
	if share >= 0.5 && len(complaints) > 1 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalComplaintConcentration,
		Severity:    severity,
		Description: fmt.Sprintf("%s accounts for %.0f%% of complaint mentions", top.Name, share*100),
		Data: map[string]interface{}{
			"category":   top.ID,
			"mentions":   top.TotalCount,
			"total":      total,
			"categories": len(complaints),
			"share":      share,
			"formula":    "top_category_mentions / all_category_mentions",
		},
	}, true
}

// sentimentMismatch flags corpora where text tone and star ratings disagree
// by more than 25 percentage points on the positive side
func (s *Scorer) sentimentMismatch(stats model.Stats) (model.Signal, bool) {
	textPositive, ok := model.Percentage(stats.SentimentCounts[model.SentimentPositive], stats.TotalReviews)
	if !ok {
		return model.Signal{}, false
	}

	gap := stats.PositivePercentage - textPositive
	if math.Abs(gap) <= 25 {
		return model.Signal{}, false
	}

	description := "Star ratings are more positive than review text"
	if gap < 0 {
		description = "Review text is more positive than star ratings"
	}

	return model.Signal{
		Type:        model.SignalSentimentMismatch,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%s (%.0f points)", description, math.Abs(gap)),
		Data: map[string]interface{}{
			"rating_positive_pct": stats.PositivePercentage,
			"text_positive_pct":   textPositive,
			"gap":                 gap,
			"formula":             "rating_positive_pct - text_positive_pct",
		},
	}, true
}
