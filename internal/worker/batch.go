package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/appscope/internal/model"
)

// Analyzer produces a report for one app, given its store URL or ID
type Analyzer interface {
	Analyze(ctx context.Context, target string) (*model.Report, error)
}

// AppJob analyzes a single app
type AppJob struct {
	Target   string
	Analyzer Analyzer
}

// Execute runs the analysis unless ctx is already done
func (j *AppJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &AppResult{Target: j.Target, Error: err}
	}

	start := time.Now()
	report, err := j.Analyzer.Analyze(ctx, j.Target)
	return &AppResult{
		Target:  j.Target,
		Report:  report,
		Error:   err,
		Elapsed: time.Since(start),
	}
}

// AppResult is the outcome of one AppJob. Report is nil when Error is set.
type AppResult struct {
	Target  string
	Report  *model.Report
	Error   error
	Elapsed time.Duration
}

// GetError returns the error from the analysis
func (r *AppResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many apps concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a batch processor running concurrency workers
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessTargets analyzes every target and returns one result per target, in
// input order. Targets not started before ctx is cancelled are reported with
// the context error.
func (b *BatchProcessor) ProcessTargets(ctx context.Context, targets []string) []*AppResult {
	if len(targets) == 0 {
		return []*AppResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	accepted := 0
	for _, target := range targets {
		if !pool.Submit(&AppJob{Target: target, Analyzer: b.analyzer}) {
			break
		}
		accepted++
	}

	results := pool.Wait()

	out := make([]*AppResult, len(targets))
	for i, target := range targets {
		if i < accepted {
			if r, ok := results[i].(*AppResult); ok {
				out[i] = r
				continue
			}
		}
		err := ctx.Err()
		if err == nil {
			err = errors.New("not processed")
		}
		out[i] = &AppResult{Target: target, Error: err}
	}

	return out
}

// ProcessFile reads targets from a file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AppResult, error) {
	targets, err := ReadTargetsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}

	return b.ProcessTargets(ctx, targets), nil
}

// Tally counts successful and failed results
func Tally(results []*AppResult) (succeeded, failed int) {
	for _, r := range results {
		if r.Error != nil {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

// ReadTargetsFromFile reads app URLs or IDs, one per line
func ReadTargetsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadTargets(file)
}

// ReadTargets reads one target per line. Blank lines and # comments are
// skipped and duplicates keep their first position.
func ReadTargets(r io.Reader) ([]string, error) {
	var targets []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			targets = append(targets, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return targets, nil
}
