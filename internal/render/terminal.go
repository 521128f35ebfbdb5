package render

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/guidance"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorCritical = lipgloss.Color("#e53935")
	colorHigh     = lipgloss.Color("#FF8F00")
	colorMedium   = lipgloss.Color("#FFC107")
	colorOK       = lipgloss.Color("#8BC34A")
	colorMuted    = lipgloss.Color("#808080")

	titleStyle   = lipgloss.NewStyle().Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	actionStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorOK).
			Padding(0, 1)
)

func severityStyle(s guidance.Severity) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(true)
	switch s {
	case guidance.SeverityCritical:
		return st.Foreground(colorCritical)
	case guidance.SeverityHigh:
		return st.Foreground(colorHigh)
	case guidance.SeverityMedium:
		return st.Foreground(colorMedium)
	}
	return st.Foreground(colorOK)
}

func scoreColor(score int) lipgloss.Color {
	switch {
	case score >= 75:
		return colorOK
	case score >= 40:
		return colorMedium
	}
	return colorCritical
}

// Terminal renders the guidance for d with ANSI styling. Styling degrades
// to plain text when the output is not a terminal.
func Terminal(d *deals.Deal, r guidance.Result) string {
	var sections []string

	score := lipgloss.NewStyle().Bold(true).Foreground(scoreColor(r.Score)).Render(fmt.Sprintf("%d%%", r.Score))
	header := fmt.Sprintf("%s  %s  MEDDPICC %s",
		titleStyle.Render(d.Label()),
		mutedStyle.Render(r.Stage.Label),
		score,
	)
	sections = append(sections, header)

	next := r.NextBestAction.Message
	if r.NextBestAction.Action != "" {
		next += "\n" + r.NextBestAction.Action
	}
	sections = append(sections, actionStyle.Render(next))

	if h := r.StageHealth; h != nil {
		line := severityStyle(h.Severity).Render(fmt.Sprintf("[%s] %s", h.Severity, h.Reason))
		if h.SuggestedStage != nil {
			line += mutedStyle.Render(fmt.Sprintf("  -> %s", *h.SuggestedStage))
		}
		sections = append(sections, headingStyle.Render("Stage health"), line, h.Explanation)
	}

	if len(r.Warnings) > 0 {
		lines := []string{headingStyle.Render("Warnings")}
		for _, w := range r.Warnings {
			lines = append(lines, fmt.Sprintf("%s %s\n    %s",
				severityStyle(w.Severity).Render(fmt.Sprintf("%-8s", w.Severity)),
				w.Message,
				mutedStyle.Render(w.Action),
			))
		}
		sections = append(sections, lines...)
	}

	fields := []string{headingStyle.Render("MEDDPICC")}
	for _, f := range r.Fields {
		mark := severityStyle(guidance.SeverityCritical).Render("✗")
		value := mutedStyle.Render("missing")
		if f.Filled {
			mark = severityStyle("").Render("✓")
			value = oneLine(f.Value)
		}
		fields = append(fields, fmt.Sprintf("%s %s %-18s %s", mark, f.Letter, f.Label, value))
	}
	sections = append(sections, fields...)

	return strings.Join(sections, "\n") + "\n"
}
