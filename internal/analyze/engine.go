// Package analyze turns a review corpus into structured findings: complaint
// and praise themes per category, adoption forces, job statements and
// pain/win dimensions.
//
// Every analyzer is a pure function of the corpus and the vocabulary. The
// Engine compiles a vocabulary once and can be shared by concurrent runs.
package analyze

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/ppiankov/appscope/internal/extract"
	"github.com/ppiankov/appscope/internal/logging"
	"github.com/ppiankov/appscope/internal/model"
	"github.com/ppiankov/appscope/internal/vocab"
	"golang.org/x/sync/errgroup"
)

// Options tune an Engine
type Options struct {
	Thresholds model.Thresholds

	// JTBDSampleSize bounds the positive reviews scanned for job statements.
	// Zero or negative scans the whole positive pool.
	JTBDSampleSize int

	// JTBDOnePerReview stops scanning templates once a review has produced
	// a statement. When false, every template may contribute one statement.
	JTBDOnePerReview bool
}

// DefaultOptions returns the standard thresholds and a 100 review JTBD sample
func DefaultOptions() Options {
	return Options{
		Thresholds:       model.DefaultThresholds(),
		JTBDSampleSize:   100,
		JTBDOnePerReview: true,
	}
}

// OptionsFromConfig maps the analysis section of the configuration
func OptionsFromConfig(cfg model.AnalysisConfig) Options {
	return Options{
		Thresholds:       cfg.Thresholds,
		JTBDSampleSize:   cfg.JTBDSampleSize,
		JTBDOnePerReview: cfg.JTBDOnePerReview,
	}
}

type compiledTheme struct {
	name    string
	matcher *extract.Matcher
}

type compiledCategory struct {
	def        vocab.Category
	matcher    *extract.Matcher
	complaints []compiledTheme
	praise     []compiledTheme
}

func (c *compiledCategory) themes(p model.Polarity) []compiledTheme {
	if p == model.PolarityPositive {
		return c.praise
	}
	return c.complaints
}

type compiledForce struct {
	def     vocab.ForceDef
	matcher *extract.Matcher
}

type compiledDimension struct {
	name    string
	matcher *extract.Matcher
}

type compiledJTBD struct {
	patterns   []*regexp.Regexp
	situations []*regexp.Regexp
	outcomes   []*regexp.Regexp
}

// Engine runs the analyzers against a compiled vocabulary
type Engine struct {
	opts   Options
	logger logging.Logger
	tagger *Tagger

	categories []compiledCategory
	forces     []compiledForce
	pains      []compiledDimension
	wins       []compiledDimension
	jtbd       compiledJTBD
}

// New compiles v into an Engine. A nil vocabulary selects the built-in one
// and a nil logger discards output.
func New(v *vocab.Vocabulary, opts Options, logger logging.Logger) (*Engine, error) {
	if v == nil {
		v = vocab.Default()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Thresholds.NegativeMax >= opts.Thresholds.PositiveMin {
		return nil, fmt.Errorf("negative threshold %d must be below positive threshold %d",
			opts.Thresholds.NegativeMax, opts.Thresholds.PositiveMin)
	}

	e := &Engine{
		opts:   opts,
		logger: logger,
		tagger: NewTagger(),
	}

	for _, c := range v.Categories {
		e.categories = append(e.categories, compiledCategory{
			def:        c,
			matcher:    extract.NewMatcher(c.Keywords),
			complaints: compileThemes(c.ComplaintThemes),
			praise:     compileThemes(c.PraiseThemes),
		})
	}
	for _, f := range v.Forces {
		e.forces = append(e.forces, compiledForce{def: f, matcher: extract.NewMatcher(f.Keywords)})
	}
	e.pains = compileDimensions(v.Outcomes.Pains)
	e.wins = compileDimensions(v.Outcomes.Wins)

	var err error
	if e.jtbd.patterns, err = compilePatterns(v.JTBD.Patterns); err != nil {
		return nil, fmt.Errorf("jtbd patterns: %w", err)
	}
	if e.jtbd.situations, err = compilePatterns(v.JTBD.Situations); err != nil {
		return nil, fmt.Errorf("jtbd situations: %w", err)
	}
	if e.jtbd.outcomes, err = compilePatterns(v.JTBD.Outcomes); err != nil {
		return nil, fmt.Errorf("jtbd outcomes: %w", err)
	}

	return e, nil
}

// Options returns the options the engine was built with
func (e *Engine) Options() Options {
	return e.opts
}

// Tagger returns the sentiment tagger used for statistics
func (e *Engine) Tagger() *Tagger {
	return e.tagger
}

// Run executes every analyzer over reviews. Analyzers run concurrently; a
// failure inside one bucket is recorded as a warning and does not affect the
// others. The only error returned is cancellation of ctx.
func (e *Engine) Run(ctx context.Context, reviews []model.Review) (*model.Analysis, error) {
	start := time.Now()
	result := &model.Analysis{}
	w := &warnings{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.Complaints = e.categoryFindings(gctx, reviews, model.PolarityNegative, w)
		return gctx.Err()
	})
	g.Go(func() error {
		result.Praise = e.categoryFindings(gctx, reviews, model.PolarityPositive, w)
		return gctx.Err()
	})
	g.Go(func() error {
		result.Forces = e.forceFindings(gctx, reviews, w)
		return gctx.Err()
	})
	g.Go(func() error {
		w.guard("jtbd", func() {
			result.JTBD = e.JTBD(reviews)
		})
		return gctx.Err()
	})
	g.Go(func() error {
		result.Outcomes.Pains = e.dimensions(gctx, reviews, model.PolarityNegative, e.pains, w)
		return gctx.Err()
	})
	g.Go(func() error {
		result.Outcomes.Wins = e.dimensions(gctx, reviews, model.PolarityPositive, e.wins, w)
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Warnings = w.list()
	for _, msg := range result.Warnings {
		e.logger.Warn("analysis bucket skipped", logging.String("reason", msg))
	}
	e.logger.Debug("analysis complete",
		logging.Int("reviews", len(reviews)),
		logging.Int("complaint_categories", len(result.Complaints)),
		logging.Int("praise_categories", len(result.Praise)),
		logging.Int("forces", len(result.Forces)),
		logging.Int("jtbd", len(result.JTBD)),
		logging.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}

// Complaints analyzes the negative pool per category
func (e *Engine) Complaints(reviews []model.Review) []model.CategoryFinding {
	return e.categoryFindings(context.Background(), reviews, model.PolarityNegative, &warnings{})
}

// Praise analyzes the positive pool per category
func (e *Engine) Praise(reviews []model.Review) []model.CategoryFinding {
	return e.categoryFindings(context.Background(), reviews, model.PolarityPositive, &warnings{})
}

// Forces classifies reviews into the four adoption forces
func (e *Engine) Forces(reviews []model.Review) []model.Force {
	return e.forceFindings(context.Background(), reviews, &warnings{})
}

// Outcomes aggregates pain points over the negative pool and wins over the
// positive pool
func (e *Engine) Outcomes(reviews []model.Review) model.Outcomes {
	w := &warnings{}
	return model.Outcomes{
		Pains: e.dimensions(context.Background(), reviews, model.PolarityNegative, e.pains, w),
		Wins:  e.dimensions(context.Background(), reviews, model.PolarityPositive, e.wins, w),
	}
}

// warnings collects per-bucket failures from concurrent analyzers
type warnings struct {
	mu   sync.Mutex
	msgs []string
}

// guard runs fn, converting a panic into a warning for bucket.
// It reports whether fn completed.
func (w *warnings) guard(bucket string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			w.add(fmt.Sprintf("%s: %v", bucket, r))
			ok = false
		}
	}()
	fn()
	return true
}

func (w *warnings) add(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msg)
}

func (w *warnings) list() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := append([]string(nil), w.msgs...)
	sort.Strings(out)
	return out
}

func compileThemes(defs []vocab.ThemeDef) []compiledTheme {
	out := make([]compiledTheme, 0, len(defs))
	for _, t := range defs {
		out = append(out, compiledTheme{name: t.Name, matcher: extract.NewMatcher(t.Keywords)})
	}
	return out
}

func compileDimensions(defs []vocab.DimensionDef) []compiledDimension {
	out := make([]compiledDimension, 0, len(defs))
	for _, d := range defs {
		out = append(out, compiledDimension{name: d.Name, matcher: extract.NewMatcher(d.Keywords)})
	}
	return out
}

func compilePatterns(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := vocab.CompilePattern(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}
