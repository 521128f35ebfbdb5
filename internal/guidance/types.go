// Package guidance derives deal coaching from a deal record.
//
// Evaluate is a pure projection of (deal, now): it scores MEDDPICC
// completeness, raises stage-gated warnings, issues at most one
// stage-health verdict and always picks exactly one next-best action.
// Nothing is cached and nothing is written; callers may evaluate the same
// or different deals concurrently.
package guidance

import (
	"github.com/HendryAvila/dealcoach/internal/meddpicc"
	"github.com/HendryAvila/dealcoach/internal/stages"
)

// --- Severity enum ---

// Severity grades a warning or verdict.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// Rank orders severities: critical > high > medium. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	}
	return 0
}

// --- Result types ---

// Warning is a risk found in the current evaluation.
type Warning struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Action   string   `json:"action"`
}

// StageHealth says the deal's stage is not supported by its data.
// A nil SuggestedStage means "review", not "move".
type StageHealth struct {
	Severity       Severity      `json:"severity"`
	SuggestedStage *stages.Stage `json:"suggested_stage"`
	Reason         string        `json:"reason"`
	Explanation    string        `json:"explanation"`
	CurrentStage   stages.Stage  `json:"current_stage"`
}

// Action is the single thing the seller should do next.
type Action struct {
	Message string `json:"message"`
	Action  string `json:"action"`
}

// FieldStatus pairs a catalog field with the deal's value for it.
type FieldStatus struct {
	meddpicc.Field
	Filled bool   `json:"filled"`
	Value  string `json:"value"`
}

// Result is the full guidance for one deal at one instant.
type Result struct {
	Score           int               `json:"meddpicc_score"`
	Fields          []FieldStatus     `json:"meddpicc_status"`
	Warnings        []Warning         `json:"warnings"`
	StageHealth     *StageHealth      `json:"stage_health,omitempty"`
	Stage           stages.Definition `json:"stage_guidance"`
	NextBestAction  Action            `json:"next_best_action"`
	DaysSinceUpdate int               `json:"days_since_update"`
}

// CriticalCount returns the number of critical warnings.
func (r Result) CriticalCount() int {
	n := 0
	for _, w := range r.Warnings {
		if w.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// HighestSeverity returns the most severe warning or verdict, or "" when
// the deal is clean.
func (r Result) HighestSeverity() Severity {
	var top Severity
	for _, w := range r.Warnings {
		if w.Severity.Rank() > top.Rank() {
			top = w.Severity
		}
	}
	if r.StageHealth != nil && r.StageHealth.Severity.Rank() > top.Rank() {
		top = r.StageHealth.Severity
	}
	return top
}
