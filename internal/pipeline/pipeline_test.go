package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/appscope/internal/model"
	"github.com/ppiankov/appscope/internal/source"
	"github.com/ppiankov/appscope/internal/telemetry"
)

type fakeSource struct {
	reviews  []model.Review
	err      error
	gotID    string
	gotLimit int
}

func (f *fakeSource) Fetch(ctx context.Context, appID string, pageLimit int) ([]model.Review, error) {
	f.gotID, f.gotLimit = appID, pageLimit
	return f.reviews, f.err
}

type fakeMetadata struct {
	meta *model.AppMeta
	err  error
}

func (f *fakeMetadata) Lookup(ctx context.Context, appID string) (*model.AppMeta, error) {
	return f.meta, f.err
}

func crashReviews() []model.Review {
	return []model.Review{
		{Rating: 1, Title: "Unusable", Body: "The app crashes every time I open the camera view on my phone."},
		{Rating: 2, Body: "It crashes constantly and I lost all my notes from last week."},
		{Rating: 1, Body: "Crashes on launch since the last update, please fix this soon!"},
		{Rating: 5, Title: "Love it", Body: "Really intuitive design and so easy to use every day."},
	}
}

func newTestPipeline(t *testing.T, src source.Source, meta source.MetadataSource) *Pipeline {
	t.Helper()
	p, err := NewPipeline(model.DefaultConfig(), Options{
		Source:   src,
		Metadata: meta,
		Metrics:  telemetry.New(),
	})
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	p.runID = func() string { return "run-1" }
	return p
}

func TestAnalyze_BuildsReport(t *testing.T) {
	src := &fakeSource{reviews: crashReviews()}
	meta := &fakeMetadata{meta: &model.AppMeta{ID: "123", Name: "Notes Pro", Developer: "Acme"}}
	p := newTestPipeline(t, src, meta)

	report, err := p.Analyze(context.Background(), "https://apps.apple.com/us/app/notes/id123")
	require.NoError(t, err)

	assert.Equal(t, "123", src.gotID)
	assert.Equal(t, 10, src.gotLimit)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "Notes Pro", report.Subject)
	assert.Equal(t, "appstore", report.Source.Kind)
	assert.Equal(t, "us", report.Source.Country)
	assert.Equal(t, 4, report.Stats.TotalReviews)
	assert.Equal(t, model.DefaultThresholds(), report.Thresholds)

	require.NotNil(t, report.Summary.TopRisk)
	assert.Equal(t, "Bugs/Reliability", report.Summary.TopRisk.Category)
	assert.Equal(t, "crashes frequently", report.Summary.TopRisk.Theme)
	assert.NotEmpty(t, report.Samples.Negative)
}

func TestAnalyze_LookupFailureTolerated(t *testing.T) {
	src := &fakeSource{reviews: crashReviews()}
	p := newTestPipeline(t, src, &fakeMetadata{err: source.ErrAppNotFound})

	report, err := p.Analyze(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "App 123", report.Subject)
	assert.Nil(t, report.App)
}

func TestAnalyze_InvalidTarget(t *testing.T) {
	src := &fakeSource{}
	p := newTestPipeline(t, src, nil)

	_, err := p.Analyze(context.Background(), "not an app")
	assert.ErrorIs(t, err, source.ErrInvalidAppID)
	assert.Empty(t, src.gotID)
}

func TestAnalyze_FetchError(t *testing.T) {
	boom := errors.New("boom")
	p := newTestPipeline(t, &fakeSource{err: boom}, nil)

	_, err := p.Analyze(context.Background(), "123")
	assert.ErrorIs(t, err, boom)
}

func TestAnalyze_EmptyCorpus(t *testing.T) {
	p := newTestPipeline(t, &fakeSource{reviews: []model.Review{}}, nil)

	report, err := p.Analyze(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Stats.TotalReviews)
	assert.Nil(t, report.Summary.TopRisk)
	require.Len(t, report.Summary.Signals, 1)
	assert.Equal(t, model.SignalThinCorpus, report.Summary.Signals[0].Type)
}

func TestAnalyzeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	data := `[{"rating": 1, "body": "The app crashes every time I open the camera view on my phone."},
	          {"rating": 5, "body": "Really intuitive design and so easy to use every day."}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	p := newTestPipeline(t, &fakeSource{}, nil)
	report, err := p.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "export.json", report.Subject)
	assert.Equal(t, "file", report.Source.Kind)
	assert.Equal(t, path, report.Source.Path)
	assert.Equal(t, 2, report.Stats.TotalReviews)
}

func TestAnalyzeFile_Missing(t *testing.T) {
	p := newTestPipeline(t, &fakeSource{}, nil)

	_, err := p.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestNewPipeline_BadVocabulary(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Analysis.VocabularyFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewPipeline(cfg, Options{Source: &fakeSource{}})
	assert.Error(t, err)
}

func TestRenderReport_WritesFiles(t *testing.T) {
	p := newTestPipeline(t, &fakeSource{reviews: crashReviews()}, nil)
	report, err := p.Analyze(context.Background(), "123")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")
	require.NoError(t, p.RenderReport(report, jsonPath, mdPath, false))

	assert.FileExists(t, jsonPath)
	assert.FileExists(t, mdPath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
