package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/appscope/internal/extract"
	"github.com/ppiankov/appscope/internal/model"
)

const sampleTitleLength = 50

// Renderer turns reports into JSON and Markdown documents
type Renderer struct {
	includeFooter bool
	maxCategories int
}

// NewRenderer creates a renderer. maxCategories bounds the categories shown
// per polarity in Markdown; zero or less shows all of them.
func NewRenderer(includeFooter bool, maxCategories int) *Renderer {
	return &Renderer{
		includeFooter: includeFooter,
		maxCategories: maxCategories,
	}
}

// WriteJSON writes the report as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}

// RenderJSON writes the report as JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	var buf bytes.Buffer
	if err := r.WriteJSON(&buf, report); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// WriteMarkdown writes the report as Markdown
func (r *Renderer) WriteMarkdown(w io.Writer, report *model.Report) error {
	_, err := io.WriteString(w, r.Markdown(report))
	return err
}

// Markdown renders the full report
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 🔍 AppScope Report: %s\n\n", report.Subject)
	r.header(&b, report)

	r.executiveSummary(&b, report)
	r.quickStats(&b, report)

	t := report.Thresholds
	r.categories(&b, "👎 Complaints", "Specific issues mentioned in negative reviews",
		fmt.Sprintf("of negative reviews (1-%d★)", t.NegativeMax),
		"Not enough negative reviews to analyze.", report.Analysis.Complaints)
	r.categories(&b, "👍 Praise", "Most praised aspects in positive reviews",
		fmt.Sprintf("of positive reviews (%d-5★)", t.PositiveMin),
		"Not enough positive reviews to analyze.", report.Analysis.Praise)

	r.jobs(&b, report.Analysis.JTBD)
	r.forces(&b, report.Analysis.Forces)
	r.outcomes(&b, report.Analysis.Outcomes)
	r.samples(&b, report)

	if len(report.Analysis.Warnings) > 0 {
		b.WriteString("## ⚠️ Analysis Warnings\n\n")
		b.WriteString("These buckets were skipped after an internal failure:\n\n")
		for _, w := range report.Analysis.Warnings {
			fmt.Fprintf(&b, "- `%s`\n", w)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Generated by AppScope. Findings are keyword and pattern matches over review text: " +
			"they show what reviewers wrote, not verified facts about the app._\n")
	}

	return b.String()
}

func (r *Renderer) header(b *strings.Builder, report *model.Report) {
	src := report.Source
	switch src.Kind {
	case "appstore":
		fmt.Fprintf(b, "_Source: App Store (%s), app %s, up to %d pages_  \n", strings.ToUpper(src.Country), src.AppID, src.Pages)
	case "file":
		fmt.Fprintf(b, "_Source: %s_  \n", src.Path)
	}
	fmt.Fprintf(b, "_Generated: %s • Run: %s_\n\n", report.GeneratedAt.Format("2006-01-02 15:04 MST"), report.RunID)

	if app := report.App; app != nil {
		parts := []string{}
		if app.Developer != "" {
			parts = append(parts, "by "+app.Developer)
		}
		if app.Version != "" {
			parts = append(parts, "v"+app.Version)
		}
		if app.RatingCount > 0 {
			parts = append(parts, fmt.Sprintf("%.1f★ from %d ratings", app.AverageRating, app.RatingCount))
		}
		if len(parts) > 0 {
			fmt.Fprintf(b, "**%s** %s\n\n", app.Name, strings.Join(parts, " • "))
		}
	}
}

func (r *Renderer) executiveSummary(b *strings.Builder, report *model.Report) {
	b.WriteString("## 💡 Executive Summary\n\n")

	highlight := func(label string, h *model.Highlight) {
		fmt.Fprintf(b, "**%s**: ", label)
		if h == nil {
			b.WriteString("Not enough data\n\n")
			return
		}
		fmt.Fprintf(b, "%s (%s), %d mentions\n\n", capitalize(h.Theme), h.Category, h.Count)
		if h.Excerpt != "" {
			fmt.Fprintf(b, "> %s\n\n", h.Excerpt)
		}
	}
	highlight("#1 Risk", report.Summary.TopRisk)
	highlight("#1 Strength", report.Summary.TopStrength)

	if len(report.Summary.Signals) > 0 {
		b.WriteString("### Signals\n\n")
		for _, s := range report.Summary.Signals {
			fmt.Fprintf(b, "- %s **%s**: %s\n", severityIcon(s.Severity), s.Type, s.Description)
		}
		b.WriteString("\n")
	}
}

func (r *Renderer) quickStats(b *strings.Builder, report *model.Report) {
	s := report.Stats
	t := report.Thresholds

	b.WriteString("## 📊 Quick Stats\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Total reviews | %d |\n", s.TotalReviews)
	fmt.Fprintf(b, "| Average rating | %.1f ★ |\n", s.AverageRating)
	fmt.Fprintf(b, "| Positive (%d-5★) | %.0f%% |\n", t.PositiveMin, s.PositivePercentage)
	fmt.Fprintf(b, "| Negative (1-%d★) | %.0f%% |\n\n", t.NegativeMax, s.NegativePercentage)

	if s.TotalReviews == 0 {
		return
	}

	b.WriteString("### Rating Distribution\n\n")
	b.WriteString("| Stars | Reviews |\n|---|---|\n")
	for stars := 5; stars >= 1; stars-- {
		fmt.Fprintf(b, "| %s | %d |\n", strings.Repeat("★", stars), s.RatingCounts[stars])
	}
	b.WriteString("\n")

	b.WriteString("### Text Sentiment\n\n")
	fmt.Fprintf(b, "Positive: %d • Neutral: %d • Negative: %d\n\n",
		s.SentimentCounts[model.SentimentPositive],
		s.SentimentCounts[model.SentimentNeutral],
		s.SentimentCounts[model.SentimentNegative])
}

func (r *Renderer) categories(b *strings.Builder, title, caption, shareLabel, empty string, findings []model.CategoryFinding) {
	fmt.Fprintf(b, "## %s\n\n_%s_\n\n", title, caption)

	if len(findings) == 0 {
		fmt.Fprintf(b, "_%s_\n\n", empty)
		return
	}

	shown := findings
	if r.maxCategories > 0 && len(shown) > r.maxCategories {
		shown = shown[:r.maxCategories]
	}

	for _, f := range shown {
		name := f.Name
		if f.Icon != "" {
			name = f.Icon + " " + name
		}
		fmt.Fprintf(b, "### %s (%d)\n\n", name, f.TotalCount)
		fmt.Fprintf(b, "_%.0f%% %s_\n\n", f.Percentage, shareLabel)

		for _, theme := range f.Themes {
			fmt.Fprintf(b, "**%s**: %d mentions\n\n", capitalize(theme.Name), theme.Count)
			for _, ex := range theme.Examples {
				fmt.Fprintf(b, "> %s\n\n", ex)
			}
		}
	}

	if hidden := len(findings) - len(shown); hidden > 0 {
		fmt.Fprintf(b, "_%d more categories in the JSON report._\n\n", hidden)
	}
}

func (r *Renderer) jobs(b *strings.Builder, jobs []model.JTBDStatement) {
	b.WriteString("## 🎯 Jobs to Be Done\n\n_What progress are users trying to make?_\n\n")

	if len(jobs) == 0 {
		b.WriteString("_No clear job statements found. Users may not be explicitly describing their use cases._\n\n")
		return
	}

	fmt.Fprintf(b, "**Found %d clear job statements:**\n\n", len(jobs))
	for i, j := range jobs {
		fmt.Fprintf(b, "%d. %s\n", i+1, j.Statement)
		if j.Situation != "" {
			fmt.Fprintf(b, "   - Situation: _%s_\n", j.Situation)
		}
		if j.Outcome != "" {
			fmt.Fprintf(b, "   - Outcome: _%s_\n", j.Outcome)
		}
	}
	b.WriteString("\n")
}

func (r *Renderer) forces(b *strings.Builder, forces []model.Force) {
	b.WriteString("## ⚖️ Forces of Progress\n\n_What drives users toward or away from this app_\n\n")

	if len(forces) == 0 {
		b.WriteString("_No force signals found._\n\n")
		return
	}

	for _, f := range forces {
		label := f.Label
		if f.Icon != "" {
			label = f.Icon + " " + label
		}
		fmt.Fprintf(b, "### %s (%d)\n\n_%s_\n\n", label, f.Count, f.Insight)
		for i, s := range f.Scenarios {
			fmt.Fprintf(b, "%d. %s\n", i+1, s)
		}
		b.WriteString("\n")
	}
}

func (r *Renderer) outcomes(b *strings.Builder, o model.Outcomes) {
	if len(o.Pains) == 0 && len(o.Wins) == 0 {
		return
	}

	b.WriteString("## 📈 Outcomes\n\n")
	table := func(title string, dims []model.Dimension) {
		if len(dims) == 0 {
			return
		}
		fmt.Fprintf(b, "### %s\n\n| Dimension | Mentions | Share |\n|---|---|---|\n", title)
		for _, d := range dims {
			fmt.Fprintf(b, "| %s | %d | %.0f%% |\n", capitalize(d.Name), d.Count, d.Percentage)
		}
		b.WriteString("\n")
		for _, d := range dims {
			if len(d.Examples) > 0 {
				fmt.Fprintf(b, "> **%s**: %s\n\n", capitalize(d.Name), d.Examples[0])
			}
		}
	}
	table("Pain Points", o.Pains)
	table("Wins", o.Wins)
}

func (r *Renderer) samples(b *strings.Builder, report *model.Report) {
	s := report.Samples
	if len(s.Positive) == 0 && len(s.Neutral) == 0 && len(s.Negative) == 0 {
		return
	}

	t := report.Thresholds
	b.WriteString("## 📝 Sample Reviews\n\n")
	band := func(heading string, reviews []model.SampleReview) {
		fmt.Fprintf(b, "### %s\n\n", heading)
		if len(reviews) == 0 {
			b.WriteString("_None._\n\n")
			return
		}
		for _, rv := range reviews {
			title := rv.Title
			if title == "" {
				title = "No title"
			}
			fmt.Fprintf(b, "**⭐ %d - %s**\n\n", rv.Rating, extract.Prefix(title, sampleTitleLength))
			if rv.Body != "" {
				fmt.Fprintf(b, "%s\n\n", rv.Body)
			}
			fmt.Fprintf(b, "_👤 %s • 📅 %s • 📱 v%s • %s_\n\n", orDash(rv.Author), orDash(rv.Date), orDash(rv.Version), rv.Sentiment)
		}
	}
	band(fmt.Sprintf("Positive (%d-5★)", t.PositiveMin), s.Positive)
	band(neutralLabel(t), s.Neutral)
	band(fmt.Sprintf("Negative (1-%d★)", t.NegativeMax), s.Negative)
}

func neutralLabel(t model.Thresholds) string {
	lo, hi := t.NegativeMax+1, t.PositiveMin-1
	switch {
	case lo == hi:
		return fmt.Sprintf("Neutral (%d★)", lo)
	case lo < hi:
		return fmt.Sprintf("Neutral (%d-%d★)", lo, hi)
	default:
		return "Neutral"
	}
}

func severityIcon(s model.SignalSeverity) string {
	switch s {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityWarning:
		return "🟡"
	default:
		return "🔵"
	}
}

// capitalize upper-cases the first letter, leaving the rest untouched
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// writeFile creates parent directories and replaces path atomically
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
