package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/appscope/internal/model"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.PageFetched(PageOK)
	m.PageFetched(PageOK)
	m.PageFetched(PageEmpty)
	m.Retried()
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)
	m.RunFinished(nil)
	m.RunFinished(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FeedPages.WithLabelValues(PageOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedPages.WithLabelValues(PageEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("error")))
}

func TestMetrics_ObserveAnalysis(t *testing.T) {
	m := New()

	a := &model.Analysis{
		Complaints: []model.CategoryFinding{{ID: "bugs"}, {ID: "pricing"}},
		Forces:     []model.Force{{Kind: model.ForcePush}},
		Warnings:   []string{"negative/bugs: boom"},
	}
	m.ObserveAnalysis(40, a, 15*time.Millisecond)

	assert.Equal(t, 40.0, testutil.ToFloat64(m.ReviewsAnalyzed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Findings.WithLabelValues("complaints")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Findings.WithLabelValues("forces")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Findings.WithLabelValues("jtbd")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BucketWarnings))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.PageFetched(PageOK)
		m.Retried()
		m.CacheLookup(true)
		m.ObserveFetch(time.Second)
		m.ObserveAnalysis(1, &model.Analysis{}, time.Second)
		m.RunFinished(nil)
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.PageFetched(PageOK)
	m.ObserveAnalysis(3, &model.Analysis{}, time.Millisecond)

	path := filepath.Join(t.TempDir(), "appscope.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.Contains(out, `appscope_feed_pages_total{outcome="ok"} 1`), out)
	assert.Contains(t, out, "appscope_reviews_analyzed_total 3")
	assert.Contains(t, out, "appscope_analysis_duration_seconds_count 1")
}
