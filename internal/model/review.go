package model

// Review is one user submission from an app store. Reviews are read-only
// once ingested; analyzers never modify them.
type Review struct {
	Rating  int    `json:"rating"`            // Star rating, 1-5
	Title   string `json:"title,omitempty"`   // Review headline
	Body    string `json:"body"`              // Review text analyzed by every component
	Author  string `json:"author,omitempty"`  // Display name of the reviewer
	Version string `json:"version,omitempty"` // App version the review was written against
	Date    string `json:"date,omitempty"`    // Timestamp as reported by the source
}

// Polarity selects a rating-filtered view of the corpus
type Polarity string

const (
	PolarityNegative Polarity = "negative" // rating <= Thresholds.NegativeMax
	PolarityPositive Polarity = "positive" // rating >= Thresholds.PositiveMin
	PolarityAll      Polarity = "all"      // every review regardless of rating
)

// Thresholds are the rating cut-offs for the polarity pools.
// Ratings strictly between the two belong to neither pool.
type Thresholds struct {
	NegativeMax int `json:"negative_max" yaml:"negative_max" mapstructure:"negative_max"`
	PositiveMin int `json:"positive_min" yaml:"positive_min" mapstructure:"positive_min"`
}

// DefaultThresholds returns the 1-2 star / 4-5 star split
func DefaultThresholds() Thresholds {
	return Thresholds{
		NegativeMax: 2,
		PositiveMin: 4,
	}
}

// Includes reports whether a review with the given rating belongs to the pool
func (t Thresholds) Includes(p Polarity, rating int) bool {
	switch p {
	case PolarityNegative:
		return rating <= t.NegativeMax
	case PolarityPositive:
		return rating >= t.PositiveMin
	case PolarityAll:
		return true
	default:
		return false
	}
}

// Pool returns the reviews that belong to the given polarity, in corpus order.
// The returned slice shares Review values with the input but never aliases it.
func (t Thresholds) Pool(reviews []Review, p Polarity) []Review {
	pool := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if t.Includes(p, r.Rating) {
			pool = append(pool, r)
		}
	}
	return pool
}

// Percentage returns 100*count/poolSize. ok is false for an empty pool,
// in which case the caller must omit the bucket.
func Percentage(count, poolSize int) (pct float64, ok bool) {
	if poolSize <= 0 {
		return 0, false
	}
	return float64(count) / float64(poolSize) * 100, true
}
