package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ppiankov/appscope/internal/logging"
	"github.com/ppiankov/appscope/internal/model"
	"github.com/ppiankov/appscope/internal/pipeline"
	"github.com/ppiankov/appscope/internal/telemetry"
)

var (
	outJSON     string
	outMD       string
	inputFile   string
	timeout     time.Duration
	pages       int
	country     string
	noCache     bool
	noFooter    bool
	vocabFile   string
	jtbdSample  int
	metricsFile string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [app-url-or-id]",
	Short: "Analyze the reviews of one app and generate a report",
	Long: `Analyze fetches the App Store reviews of one app, or reads them from a
JSON/CSV export, and reports:
- Complaint and praise themes per category
- Forces of adoption
- Jobs-to-be-done statements
- Pain points and wins

Example:
  appscope analyze https://apps.apple.com/us/app/notion/id1232780281
  appscope analyze 1232780281 --pages 5 --country gb --md report.md
  appscope analyze --input reviews.csv --json report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path (empty to skip)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().StringVar(&inputFile, "input", "", "read reviews from a JSON or CSV file instead of the App Store")

	addFetchFlags(analyzeCmd.Flags())
	analyzeCmd.Flags().IntVar(&pages, "pages", 0, "feed pages to fetch, at most 10 (default from config)")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall analysis timeout")
}

// addFetchFlags registers the flags shared by analyze and batch
func addFetchFlags(fs *pflag.FlagSet) {
	fs.StringVar(&country, "country", "", "App Store country code (default from config)")
	fs.BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	fs.BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	fs.StringVar(&vocabFile, "vocab", "", "vocabulary YAML file (default: built-in)")
	fs.IntVar(&jtbdSample, "jtbd-sample", 0, "positive reviews scanned for job statements (default from config)")
	fs.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format to this path")
}

// applyFlags overlays explicitly set command flags on the configuration
func applyFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("pages") {
		cfg.Source.MaxPages = pages
	}
	if flags.Changed("country") {
		cfg.Source.Country = country
	}
	if flags.Changed("vocab") {
		cfg.Analysis.VocabularyFile = vocabFile
	}
	if flags.Changed("jtbd-sample") {
		cfg.Analysis.JTBDSampleSize = jtbdSample
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.TextfilePath = metricsFile
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (inputFile == "") {
		return fmt.Errorf("provide exactly one of an app URL/ID or --input")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	metrics := telemetry.New()
	opts := pipeline.Options{Metrics: metrics, Logger: logger}
	if cfg.Output.Verbose {
		opts.Progress = func(page, total int, status string) {
			fmt.Fprintf(os.Stderr, "⚙️  %s\n", status)
		}
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg, opts)
	if err != nil {
		return err
	}

	var report *model.Report
	if inputFile != "" {
		report, err = p.AnalyzeFile(ctx, inputFile)
	} else {
		report, err = p.Analyze(ctx, args[0])
	}
	if err != nil {
		writeMetrics(cfg, metrics, logger)
		return fmt.Errorf("analysis failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Analyzed %d reviews\n", report.Stats.TotalReviews)
		fmt.Fprintf(os.Stderr, "✓ Found %d complaint and %d praise categories\n",
			len(report.Analysis.Complaints), len(report.Analysis.Praise))
		fmt.Fprintf(os.Stderr, "✓ Found %d job statements\n", len(report.Analysis.JTBD))
		fmt.Fprintln(os.Stderr)
	}

	fmt.Println(pipeline.Summary(report, pipeline.DefaultStyles()))

	if err := p.RenderReport(report, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	writeMetrics(cfg, metrics, logger)
	return nil
}

// writeMetrics exports the run metrics when a textfile path is configured.
// Export failures never fail the run.
func writeMetrics(cfg *model.Config, metrics *telemetry.Metrics, logger logging.Logger) {
	path := cfg.Metrics.TextfilePath
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logger.Warn("write metrics failed", logging.String("path", path), logging.Err(err))
		return
	}
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote metrics: %s\n", path)
	}
}
