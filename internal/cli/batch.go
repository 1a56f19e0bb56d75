package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/appscope/internal/extract"
	"github.com/ppiankov/appscope/internal/model"
	"github.com/ppiankov/appscope/internal/pipeline"
	"github.com/ppiankov/appscope/internal/telemetry"
	"github.com/ppiankov/appscope/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple apps from a file in parallel",
	Long: `Batch analyzes several apps concurrently:
- Read App Store URLs or IDs from the input file (one per line, # comments allowed)
- Process apps in parallel, sharing one polite rate limit for the feed
- Generate <app-id>.json and <app-id>.md for each app

Example:
  appscope batch apps.txt
  appscope batch apps.txt --concurrency 2 --output-dir ./reports
  appscope batch apps.txt --country gb --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./appscope-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 20*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().IntVar(&pages, "pages", 0, "feed pages to fetch per app, at most 10 (default from config)")
	addFetchFlags(batchCmd.Flags())
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  AppScope Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Country:      %s\n", cfg.Source.Country)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// One pipeline serves every worker, so the feed limiter and cache are shared
	metrics := telemetry.New()
	p, err := pipeline.NewPipeline(cfg, pipeline.Options{
		Limiter: worker.NewLimiterFromConfig(cfg.RateLimiting),
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)

	fmt.Fprintf(os.Stderr, "⚙️  Processing apps with %d workers...\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := p.Renderer()
	written := 0
	for _, result := range results {
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Target, result.Error)
			continue
		}

		name := reportName(result.Report)
		jsonPath := filepath.Join(outputDir, name+".json")
		mdPath := filepath.Join(outputDir, name+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Target, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Target, err)
			continue
		}

		written++
		fmt.Fprintf(os.Stderr, "✓ %s (%d reviews, %.1f★) in %v\n",
			result.Report.Subject, result.Report.Stats.TotalReviews,
			result.Report.Stats.AverageRating, result.Elapsed.Round(time.Millisecond))
	}

	succeeded, failed := worker.Tally(results)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d apps\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Written:   %d\n", written)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	writeMetrics(cfg, metrics, logger)
	return nil
}

// reportName picks the output file stem: the app ID, or the sanitized subject
func reportName(report *model.Report) string {
	if report.Source.AppID != "" {
		return report.Source.AppID
	}
	return sanitizeFilename(report.Subject)
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".")
	if s == "" {
		return "report"
	}

	return extract.Prefix(s, 100)
}
