// Package pipeline runs one analysis end to end: acquire reviews, run the
// engine, summarize, and render the report.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/appscope/internal/analyze"
	"github.com/ppiankov/appscope/internal/cache"
	"github.com/ppiankov/appscope/internal/logging"
	"github.com/ppiankov/appscope/internal/model"
	"github.com/ppiankov/appscope/internal/score"
	"github.com/ppiankov/appscope/internal/source"
	"github.com/ppiankov/appscope/internal/telemetry"
	"github.com/ppiankov/appscope/internal/vocab"
	"github.com/ppiankov/appscope/internal/worker"
)

// Options supplies collaborators. Zero fields are built from the config.
type Options struct {
	Source     source.Source
	Metadata   source.MetadataSource
	Vocabulary *vocab.Vocabulary
	Limiter    *worker.Limiter
	Metrics    *telemetry.Metrics
	Logger     logging.Logger
	Progress   source.ProgressFunc
}

// Pipeline orchestrates acquisition, analysis and reporting
type Pipeline struct {
	source   source.Source
	metadata source.MetadataSource
	engine   *analyze.Engine
	scorer   *score.Scorer
	renderer *Renderer
	metrics  *telemetry.Metrics
	logger   logging.Logger
	config   *model.Config

	now   func() time.Time
	runID func() string
}

// NewPipeline creates a pipeline for cfg. Without an explicit Source it
// reads the App Store feed, which then also serves metadata lookups.
func NewPipeline(cfg *model.Config, opts Options) (*Pipeline, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	v := opts.Vocabulary
	if v == nil {
		var err error
		if v, err = vocab.Load(cfg.Analysis.VocabularyFile); err != nil {
			return nil, err
		}
	}

	engine, err := analyze.New(v, analyze.OptionsFromConfig(cfg.Analysis), logger)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	src, meta := opts.Source, opts.Metadata
	if src == nil {
		limiter := opts.Limiter
		if limiter == nil {
			limiter = worker.NewLimiterFromConfig(cfg.RateLimiting)
		}
		store := source.NewAppStore(source.AppStoreOptions{
			HTTP:     cfg.HTTP,
			Source:   cfg.Source,
			Limiter:  limiter,
			Cache:    cache.New(cfg.Cache),
			Metrics:  opts.Metrics,
			Logger:   logger,
			Progress: opts.Progress,
		})
		src = store
		if meta == nil {
			meta = store
		}
	}

	return &Pipeline{
		source:   src,
		metadata: meta,
		engine:   engine,
		scorer:   score.NewScorer(),
		renderer: NewRenderer(cfg.Output.IncludeFooter, cfg.Output.MaxCategories),
		metrics:  opts.Metrics,
		logger:   logger,
		config:   cfg,
		now:      time.Now,
		runID:    uuid.NewString,
	}, nil
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Analyze fetches and analyzes one app given its store URL or numeric ID
func (p *Pipeline) Analyze(ctx context.Context, target string) (report *model.Report, err error) {
	defer func() { p.metrics.RunFinished(err) }()

	appID, err := source.ParseAppID(target)
	if err != nil {
		return nil, err
	}

	pages := p.config.Source.MaxPages
	reviews, err := p.source.Fetch(ctx, appID, pages)
	if err != nil {
		return nil, fmt.Errorf("fetch reviews: %w", err)
	}

	var meta *model.AppMeta
	if p.metadata != nil {
		meta, err = p.metadata.Lookup(ctx, appID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn("app lookup failed", logging.String("app_id", appID), logging.Err(err))
			meta, err = nil, nil
		}
	}

	subject := "App " + appID
	if meta != nil && meta.Name != "" {
		subject = meta.Name
	}

	info := model.SourceInfo{
		Kind:    "appstore",
		AppID:   appID,
		Country: p.config.Source.Country,
		Pages:   pages,
	}
	return p.AnalyzeReviews(ctx, subject, info, meta, reviews)
}

// AnalyzeFile analyzes a local JSON or CSV review export
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (report *model.Report, err error) {
	defer func() { p.metrics.RunFinished(err) }()

	reviews, err := source.LoadFile(path)
	if err != nil {
		return nil, err
	}

	info := model.SourceInfo{Kind: "file", Path: path}
	return p.AnalyzeReviews(ctx, filepath.Base(path), info, nil, reviews)
}

// AnalyzeReviews runs the engine over an acquired corpus and assembles the
// report
func (p *Pipeline) AnalyzeReviews(ctx context.Context, subject string, info model.SourceInfo, meta *model.AppMeta, reviews []model.Review) (*model.Report, error) {
	start := time.Now()
	analysis, err := p.engine.Run(ctx, reviews)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	p.metrics.ObserveAnalysis(len(reviews), analysis, time.Since(start))

	stats := p.engine.Stats(reviews)

	report := &model.Report{
		RunID:       p.runID(),
		Subject:     subject,
		Source:      info,
		GeneratedAt: p.now().UTC(),
		App:         meta,
		Thresholds:  p.engine.Options().Thresholds,
		Stats:       stats,
		Summary:     p.scorer.Summarize(stats, analysis),
		Analysis:    *analysis,
		Samples:     p.engine.Samples(reviews, p.config.Analysis.SampleReviews),
	}

	p.logger.Info("report built",
		logging.String("run_id", report.RunID),
		logging.String("subject", subject),
		logging.Int("reviews", len(reviews)),
		logging.Int("warnings", len(analysis.Warnings)),
	)
	return report, nil
}

// RenderReport writes the report to the requested outputs. Empty paths are
// skipped.
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	return nil
}

var _ worker.Analyzer = (*Pipeline)(nil)
