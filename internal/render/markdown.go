// Package render formats guidance results for people: markdown for MCP
// clients and styled text for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/guidance"
	"github.com/HendryAvila/dealcoach/internal/pipeline"
)

// severityMarker maps a severity to the marker used in markdown output.
func severityMarker(s guidance.Severity) string {
	switch s {
	case guidance.SeverityCritical:
		return "🔴"
	case guidance.SeverityHigh:
		return "🟠"
	case guidance.SeverityMedium:
		return "🟡"
	}
	return "⚪"
}

// Markdown renders the guidance for d.
func Markdown(d *deals.Deal, r guidance.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Deal Guidance: %s\n\n", d.Label())
	fmt.Fprintf(&sb, "**Stage:** %s (%s)\n", r.Stage.Label, r.Stage.Stage)
	fmt.Fprintf(&sb, "**MEDDPICC:** %d%%\n", r.Score)
	if r.DaysSinceUpdate == guidance.NeverUpdated {
		sb.WriteString("**Last update:** never\n\n")
	} else {
		fmt.Fprintf(&sb, "**Last update:** %d days ago\n\n", r.DaysSinceUpdate)
	}

	sb.WriteString("## Next Best Action\n\n")
	fmt.Fprintf(&sb, "**%s**", r.NextBestAction.Message)
	if r.NextBestAction.Action != "" {
		fmt.Fprintf(&sb, ": %s", r.NextBestAction.Action)
	}
	sb.WriteString("\n\n")

	if h := r.StageHealth; h != nil {
		sb.WriteString("## Stage Health\n\n")
		fmt.Fprintf(&sb, "%s **%s**\n\n", severityMarker(h.Severity), h.Reason)
		fmt.Fprintf(&sb, "%s\n\n", h.Explanation)
		if h.SuggestedStage != nil {
			fmt.Fprintf(&sb, "Suggested stage: `%s`\n\n", *h.SuggestedStage)
		} else {
			sb.WriteString("Review whether this deal is still active.\n\n")
		}
	}

	if len(r.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&sb, "- %s **%s** - %s\n", severityMarker(w.Severity), w.Message, w.Action)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## MEDDPICC\n\n")
	sb.WriteString("| | Field | Value |\n")
	sb.WriteString("|-|-------|-------|\n")
	for _, f := range r.Fields {
		marker, value := "⬜", "—"
		if f.Filled {
			marker, value = "✅", oneLine(f.Value)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", marker, f.Label, value)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "## Playbook: %s\n\n", r.Stage.Label)
	fmt.Fprintf(&sb, "**Objective:** %s\n\n", r.Stage.Objective)
	for _, a := range r.Stage.Actions {
		fmt.Fprintf(&sb, "- %s\n", a)
	}
	fmt.Fprintf(&sb, "\n**To advance:** %s\n", r.Stage.NextStageRequires)

	return sb.String()
}

// StatsMarkdown renders a funnel summary.
func StatsMarkdown(st pipeline.Stats) string {
	var sb strings.Builder

	sb.WriteString("# Pipeline\n\n")
	sb.WriteString("| Stage | Deals | Value | Avg days in stage |\n")
	sb.WriteString("|-------|-------|-------|-------------------|\n")
	for _, s := range st.ByStage {
		fmt.Fprintf(&sb, "| %s | %d | %d | %d |\n", s.Stage, s.Count, s.Value, s.AvgDaysInStage)
	}
	fmt.Fprintf(&sb, "\n**Open:** %d deals, %d\n", st.OpenDeals, st.OpenValue)
	fmt.Fprintf(&sb, "**Won:** %d  **Lost:** %d\n", st.WonDeals, st.LostDeals)
	fmt.Fprintf(&sb, "**Total value (excl. lost):** %d\n", st.TotalValue)
	return sb.String()
}

// NudgesMarkdown renders nudges as a list.
func NudgesMarkdown(ns []pipeline.Nudge) string {
	if len(ns) == 0 {
		return "# Nudges\n\nNothing needs attention right now.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Nudges (%d)\n\n", len(ns))
	for _, n := range ns {
		fmt.Fprintf(&sb, "- %s **%s** - %s (`%s`)\n", severityMarker(n.Priority), n.Message, n.ActionSuggestion, n.DealID)
	}
	return sb.String()
}

// oneLine keeps multi-line field values inside a table cell.
func oneLine(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
