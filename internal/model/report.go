package model

import "time"

// Report is the complete AppScope analysis report
type Report struct {
	RunID       string     `json:"run_id"`
	Subject     string     `json:"subject"`       // App name, or the input file name
	Source      SourceInfo `json:"source"`        // Where the reviews came from
	GeneratedAt time.Time  `json:"generated_at"`
	App         *AppMeta   `json:"app,omitempty"` // Store metadata when available

	Thresholds Thresholds `json:"thresholds"`
	Stats      Stats      `json:"stats"`
	Summary    Summary    `json:"summary"`
	Analysis   Analysis   `json:"analysis"`
	Samples    Samples    `json:"samples"`
}

// SourceInfo describes how the corpus was acquired
type SourceInfo struct {
	Kind    string `json:"kind"`              // "appstore" or "file"
	AppID   string `json:"app_id,omitempty"`
	Country string `json:"country,omitempty"`
	Pages   int    `json:"pages,omitempty"`   // Feed pages requested
	Path    string `json:"path,omitempty"`    // Input file path for file sources
}

// AppMeta is store metadata for the analyzed app
type AppMeta struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Developer     string  `json:"developer,omitempty"`
	Version       string  `json:"version,omitempty"`
	AverageRating float64 `json:"average_rating,omitempty"`
	RatingCount   int     `json:"rating_count,omitempty"`
	URL           string  `json:"url,omitempty"`
}

// Sentiment is a coarse polarity tag derived from review text
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Stats are corpus-level quick stats
type Stats struct {
	TotalReviews       int               `json:"total_reviews"`
	AverageRating      float64           `json:"average_rating"`
	PositivePercentage float64           `json:"positive_percentage"`
	NegativePercentage float64           `json:"negative_percentage"`
	RatingCounts       map[int]int       `json:"rating_counts"`   // Star rating -> reviews
	SentimentCounts    map[Sentiment]int `json:"sentiment_counts"` // Text sentiment -> reviews
}

// Summary is the executive summary at the top of a report
type Summary struct {
	TopRisk     *Highlight `json:"top_risk,omitempty"`
	TopStrength *Highlight `json:"top_strength,omitempty"`
	Signals     []Signal   `json:"signals"`
}

// Highlight is the leading theme of the leading category
type Highlight struct {
	Category string `json:"category"`
	Theme    string `json:"theme"`
	Count    int    `json:"count"`
	Excerpt  string `json:"excerpt"`
}

// Signal represents a diagnostic signal with transparent data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalNegativeShare          SignalType = "negative_share"          // Share of 1-2 star reviews
	SignalComplaintConcentration SignalType = "complaint_concentration" // Top complaint category dominance
	SignalSentimentMismatch      SignalType = "sentiment_mismatch"      // Text sentiment disagrees with stars
	SignalThinCorpus             SignalType = "thin_corpus"             // Too few reviews for stable signal
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// Samples are a handful of raw reviews per rating band
type Samples struct {
	Positive []SampleReview `json:"positive"`
	Neutral  []SampleReview `json:"neutral"`
	Negative []SampleReview `json:"negative"`
}

// SampleReview is a review with its derived sentiment tag
type SampleReview struct {
	Review
	Sentiment Sentiment `json:"sentiment"`
}
