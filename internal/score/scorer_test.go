package score

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/appscope/internal/model"
)

func findSignal(signals []model.Signal, typ model.SignalType) (model.Signal, bool) {
	for _, s := range signals {
		if s.Type == typ {
			return s, true
		}
	}
	return model.Signal{}, false
}

func TestScorer_Summarize_Highlights(t *testing.T) {
	scorer := NewScorer()

	long := "The app crashes every single time I try to open a document from the files app on my iPad."
	analysis := &model.Analysis{
		Complaints: []model.CategoryFinding{
			{ID: "bugs", Name: "Bugs/Reliability", TotalCount: 4, Themes: []model.Theme{
				{Name: "crashes frequently", Count: 3, Examples: []string{long}},
			}},
			{ID: "pricing", Name: "Pricing/Monetization", TotalCount: 1},
		},
		Praise: []model.CategoryFinding{
			{ID: "ui", Name: "UI/UX", TotalCount: 2, Themes: []model.Theme{
				{Name: "intuitive design", Count: 2, Examples: []string{"So easy to use."}},
			}},
		},
	}
	stats := model.Stats{TotalReviews: 30, NegativePercentage: 10, PositivePercentage: 70,
		SentimentCounts: map[model.Sentiment]int{model.SentimentPositive: 20}}

	summary := scorer.Summarize(stats, analysis)

	require.NotNil(t, summary.TopRisk)
	assert.Equal(t, "crashes frequently", summary.TopRisk.Theme)
	assert.Equal(t, 3, summary.TopRisk.Count)
	assert.Equal(t, "Bugs/Reliability", summary.TopRisk.Category)
	assert.True(t, strings.HasSuffix(summary.TopRisk.Excerpt, "..."), summary.TopRisk.Excerpt)
	assert.Len(t, []rune(summary.TopRisk.Excerpt), 83, "80 characters plus ellipsis")

	require.NotNil(t, summary.TopStrength)
	assert.Equal(t, "So easy to use.", summary.TopStrength.Excerpt)
}

func TestScorer_Summarize_NoThemes(t *testing.T) {
	scorer := NewScorer()

	analysis := &model.Analysis{
		Complaints: []model.CategoryFinding{{ID: "bugs", TotalCount: 1}},
	}
	summary := scorer.Summarize(model.Stats{TotalReviews: 50}, analysis)

	assert.Nil(t, summary.TopRisk, "no top risk without themes")
	assert.Nil(t, summary.TopStrength)
}

func TestScorer_Summarize_EmptyCorpus(t *testing.T) {
	scorer := NewScorer()

	summary := scorer.Summarize(model.Stats{}, &model.Analysis{})

	require.Len(t, summary.Signals, 1)
	assert.Equal(t, model.SignalThinCorpus, summary.Signals[0].Type)
	assert.Equal(t, model.SeverityCritical, summary.Signals[0].Severity)
}

func TestScorer_NegativeShareSeverity(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		pct  float64
		want model.SignalSeverity
	}{
		{pct: 5, want: model.SeverityInfo},
		{pct: 20, want: model.SeverityWarning},
		{pct: 39.9, want: model.SeverityWarning},
		{pct: 40, want: model.SeverityCritical},
	}

	for _, tt := range tests {
		stats := model.Stats{TotalReviews: 100, NegativePercentage: tt.pct}
		sig, ok := findSignal(scorer.Summarize(stats, nil).Signals, model.SignalNegativeShare)
		require.True(t, ok, "negative share signal for %.1f%%", tt.pct)
		assert.Equal(t, tt.want, sig.Severity, "%.1f%%", tt.pct)
	}
}

func TestScorer_ThinCorpus(t *testing.T) {
	scorer := NewScorer()

	sig, ok := findSignal(scorer.Summarize(model.Stats{TotalReviews: 3}, nil).Signals, model.SignalThinCorpus)
	require.True(t, ok)
	assert.Equal(t, model.SeverityCritical, sig.Severity, "3 reviews")

	sig, ok = findSignal(scorer.Summarize(model.Stats{TotalReviews: 12}, nil).Signals, model.SignalThinCorpus)
	require.True(t, ok)
	assert.Equal(t, model.SeverityWarning, sig.Severity, "12 reviews")

	_, ok = findSignal(scorer.Summarize(model.Stats{TotalReviews: 20}, nil).Signals, model.SignalThinCorpus)
	assert.False(t, ok, "20 reviews is not thin")
}

func TestScorer_ComplaintConcentration(t *testing.T) {
	scorer := NewScorer()

	analysis := &model.Analysis{Complaints: []model.CategoryFinding{
		{ID: "bugs", Name: "Bugs/Reliability", TotalCount: 6},
		{ID: "pricing", Name: "Pricing/Monetization", TotalCount: 2},
		{ID: "ui", Name: "UI/UX", TotalCount: 2},
	}}

	sig, ok := findSignal(scorer.Summarize(model.Stats{TotalReviews: 40}, analysis).Signals, model.SignalComplaintConcentration)
	require.True(t, ok)
	assert.Equal(t, model.SeverityWarning, sig.Severity, "60%% share")
	assert.Equal(t, 0.6, sig.Data["share"])

	single := &model.Analysis{Complaints: []model.CategoryFinding{{ID: "bugs", TotalCount: 3}}}
	sig, _ = findSignal(scorer.Summarize(model.Stats{TotalReviews: 40}, single).Signals, model.SignalComplaintConcentration)
	assert.Equal(t, model.SeverityInfo, sig.Severity, "single category")
}

func TestScorer_SentimentMismatch(t *testing.T) {
	scorer := NewScorer()

	stats := model.Stats{
		TotalReviews:       100,
		PositivePercentage: 80,
		SentimentCounts:    map[model.Sentiment]int{model.SentimentPositive: 40},
	}
	sig, ok := findSignal(scorer.Summarize(stats, nil).Signals, model.SignalSentimentMismatch)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(sig.Description, "Star ratings are more positive"), sig.Description)

	stats.SentimentCounts[model.SentimentPositive] = 70
	_, ok = findSignal(scorer.Summarize(stats, nil).Signals, model.SignalSentimentMismatch)
	assert.False(t, ok, "no mismatch for a 10 point gap")
}
