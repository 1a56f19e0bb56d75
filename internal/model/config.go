package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete AppScope configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Source       SourceConfig       `yaml:"source" mapstructure:"source"`
	Analysis     AnalysisConfig     `yaml:"analysis" mapstructure:"analysis"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics" mapstructure:"metrics"`
}

// HTTPConfig controls the review feed client
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls feed page caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitingConfig is the per-host request budget for the feed
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig controls batch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// SourceConfig controls App Store acquisition
type SourceConfig struct {
	Country   string `yaml:"country" mapstructure:"country"`
	MaxPages  int    `yaml:"max_pages" mapstructure:"max_pages"`
	SortBy    string `yaml:"sort_by" mapstructure:"sort_by"`
	FeedURL   string `yaml:"feed_url" mapstructure:"feed_url"`     // Base URL of the customer review feed
	LookupURL string `yaml:"lookup_url" mapstructure:"lookup_url"` // Base URL of the metadata lookup API
}

// AnalysisConfig tunes the text-pattern engine
type AnalysisConfig struct {
	Thresholds       Thresholds `yaml:"thresholds" mapstructure:"thresholds"`
	VocabularyFile   string     `yaml:"vocabulary_file,omitempty" mapstructure:"vocabulary_file"`
	JTBDSampleSize   int        `yaml:"jtbd_sample_size" mapstructure:"jtbd_sample_size"`
	JTBDOnePerReview bool       `yaml:"jtbd_one_per_review" mapstructure:"jtbd_one_per_review"`
	SampleReviews    int        `yaml:"sample_reviews" mapstructure:"sample_reviews"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
	MaxCategories int  `yaml:"max_categories" mapstructure:"max_categories"` // Categories shown per polarity in Markdown
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path,omitempty" mapstructure:"textfile_path"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "AppScope/0.1 (+https://github.com/ppiankov/appscope)",
			MaxBodyBytes:  5_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   6 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         1,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Source: SourceConfig{
			Country:   "us",
			MaxPages:  10,
			SortBy:    "mostRecent",
			FeedURL:   "https://itunes.apple.com",
			LookupURL: "https://itunes.apple.com/lookup",
		},
		Analysis: AnalysisConfig{
			Thresholds:       DefaultThresholds(),
			JTBDSampleSize:   100,
			JTBDOnePerReview: true,
			SampleReviews:    5,
		},
		Output: OutputConfig{
			IncludeFooter: true,
			MaxCategories: 6,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// defaultCacheDir places the feed cache under the user cache directory
func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".appscope-cache"
	}
	return filepath.Join(dir, "appscope")
}
