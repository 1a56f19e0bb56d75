package pipeline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/appscope/internal/model"
)

var (
	colorAccent  = lipgloss.Color("#20B9B4")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6C7A89")
)

// Styles are the lipgloss styles used for the terminal summary
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Risk     lipgloss.Style
	Strength lipgloss.Style
	Warning  lipgloss.Style
	Box      lipgloss.Style
}

// DefaultStyles returns the colored terminal styles
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Label:    lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(colorMuted),
		Risk:     lipgloss.NewStyle().Foreground(colorError),
		Strength: lipgloss.NewStyle().Foreground(colorAccent),
		Warning:  lipgloss.NewStyle().Foreground(colorWarning),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1),
	}
}

// Summary renders a compact terminal view of the report: headline stats,
// the top risk and strength, and warning-level signals.
func Summary(report *model.Report, styles Styles) string {
	var lines []string

	lines = append(lines, styles.Title.Render("AppScope: "+report.Subject))
	lines = append(lines, styles.Muted.Render(fmt.Sprintf("%d reviews • %.1f★ avg • %.0f%% positive • %.0f%% negative",
		report.Stats.TotalReviews, report.Stats.AverageRating,
		report.Stats.PositivePercentage, report.Stats.NegativePercentage)))
	lines = append(lines, "")

	lines = append(lines, styles.Label.Render("#1 Risk:     ")+highlightLine(report.Summary.TopRisk, styles.Risk))
	lines = append(lines, styles.Label.Render("#1 Strength: ")+highlightLine(report.Summary.TopStrength, styles.Strength))

	for _, s := range report.Summary.Signals {
		if s.Severity == model.SeverityInfo {
			continue
		}
		lines = append(lines, styles.Warning.Render(fmt.Sprintf("%s %s", severityIcon(s.Severity), s.Description)))
	}
	if n := len(report.Analysis.Warnings); n > 0 {
		lines = append(lines, styles.Warning.Render(fmt.Sprintf("⚠️  %d analysis buckets skipped", n)))
	}

	return styles.Box.Render(strings.Join(lines, "\n"))
}

func highlightLine(h *model.Highlight, style lipgloss.Style) string {
	if h == nil {
		return "Not enough data"
	}
	return style.Render(fmt.Sprintf("%s (%s, %d mentions)", capitalize(h.Theme), h.Category, h.Count))
}
