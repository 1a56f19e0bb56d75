package model

// Theme is a named cluster of complaint or praise sentences inside a category
type Theme struct {
	Name     string   `json:"name"`
	Count    int      `json:"count"`
	Examples []string `json:"examples"` // At most 3, first-encountered order
}

// CategoryFinding is the complaint or praise result for one category
type CategoryFinding struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon,omitempty"`
	TotalCount int     `json:"total_count"` // Reviews whose extracted sentence was kept
	Percentage float64 `json:"percentage"`  // Share of the polarity pool
	Themes     []Theme `json:"themes"`      // At most 5, count descending
}

// ForceKind is one of the four adoption forces
type ForceKind string

const (
	ForcePush    ForceKind = "push"    // Current solution fails
	ForcePull    ForceKind = "pull"    // Attraction to this app
	ForceAnxiety ForceKind = "anxiety" // Fears about switching
	ForceHabit   ForceKind = "habit"   // Inertia, status quo
)

// ForceKinds lists the forces in presentation order
var ForceKinds = []ForceKind{ForcePush, ForcePull, ForceAnxiety, ForceHabit}

// Force summarizes one adoption force across its review pool
type Force struct {
	Kind      ForceKind `json:"kind"`
	Label     string    `json:"label"`
	Icon      string    `json:"icon,omitempty"`
	Count     int       `json:"count"`     // Accepted scenarios before deduplication
	Scenarios []string  `json:"scenarios"` // Unique, at most 5
	Insight   string    `json:"insight"`
}

// JTBDStatement is a verbatim job-to-be-done sentence with its source context
type JTBDStatement struct {
	Statement  string `json:"statement"`
	FullReview string `json:"full_review"`         // First 300 characters of the source review
	Situation  string `json:"situation,omitempty"` // e.g. "when i need to file a claim"
	Outcome    string `json:"outcome,omitempty"`   // e.g. "so i can find things quickly"
}

// Dimension is a pain or win bucket of the outcome aggregation
type Dimension struct {
	Name       string   `json:"name"`
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
	Examples   []string `json:"examples"` // Unique, at most 3
}

// Outcomes holds the pain points (negative pool) and wins (positive pool)
type Outcomes struct {
	Pains []Dimension `json:"pains"`
	Wins  []Dimension `json:"wins"`
}

// Analysis is the complete output of one engine run
type Analysis struct {
	Complaints []CategoryFinding `json:"complaints"`
	Praise     []CategoryFinding `json:"praise"`
	Forces     []Force           `json:"forces"`
	JTBD       []JTBDStatement   `json:"jtbd"`
	Outcomes   Outcomes          `json:"outcomes"`
	Warnings   []string          `json:"warnings,omitempty"` // Buckets skipped because of internal failures
}

// Force returns the force of the given kind, if present
func (a *Analysis) Force(kind ForceKind) (Force, bool) {
	for _, f := range a.Forces {
		if f.Kind == kind {
			return f, true
		}
	}
	return Force{}, false
}
