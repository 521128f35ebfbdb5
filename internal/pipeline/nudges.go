package pipeline

import (
	"fmt"
	"time"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/guidance"
	"github.com/HendryAvila/dealcoach/internal/stages"
)

// StaleAfterDays is how long a deal may sit in one stage before it is
// nudged.
const StaleAfterDays = 14

// Nudge is a portfolio-level reminder tied to one deal.
type Nudge struct {
	Priority         guidance.Severity `json:"priority"`
	Message          string            `json:"message"`
	DealID           string            `json:"deal_id"`
	ActionSuggestion string            `json:"action_suggestion"`
}

// NudgeOption adjusts which reminders Nudges raises.
type NudgeOption func(*nudgeConfig)

type nudgeConfig struct {
	interactions map[string]int
}

// WithInteractionCounts supplies logged interactions per deal id. When
// set, outreach deals with no interaction at all are nudged.
func WithInteractionCounts(counts map[string]int) NudgeOption {
	return func(c *nudgeConfig) {
		if counts == nil {
			counts = map[string]int{}
		}
		c.interactions = counts
	}
}

// Nudges lists reminders for open deals: overdue next actions first, then
// deals stale in their stage, then untouched outreach (only with
// WithInteractionCounts), then deals whose stage fails its health check.
// Within each group deals keep their input order.
func Nudges(ds []deals.Deal, now time.Time, opts ...NudgeOption) []Nudge {
	var cfg nudgeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	today := now.UTC().Truncate(24 * time.Hour)

	var overdue, stale, untouched, unhealthy []Nudge
	for i := range ds {
		d := &ds[i]
		if stages.IsTerminal(d.Stage) {
			continue
		}

		if !d.NextActionDate.IsZero() && d.NextActionDate.Before(today) {
			overdue = append(overdue, Nudge{
				Priority:         guidance.SeverityHigh,
				Message:          fmt.Sprintf("Overdue action: %s", d.NextAction),
				DealID:           d.ID,
				ActionSuggestion: fmt.Sprintf("Contact %s about: %s", orClient(d.Organization), d.NextAction),
			})
		}

		if deals.DaysInStage(d, now) > StaleAfterDays {
			stale = append(stale, Nudge{
				Priority:         guidance.SeverityMedium,
				Message:          fmt.Sprintf("%s stale in %s for >%d days", d.Label(), d.Stage, StaleAfterDays),
				DealID:           d.ID,
				ActionSuggestion: "Schedule follow-up or move to next stage",
			})
		}

		if cfg.interactions != nil && stages.Normalize(string(d.Stage)) == stages.StageOutreach && cfg.interactions[d.ID] == 0 {
			untouched = append(untouched, Nudge{
				Priority:         guidance.SeverityMedium,
				Message:          fmt.Sprintf("%s in outreach but no interactions logged", d.Label()),
				DealID:           d.ID,
				ActionSuggestion: "Log first contact attempt or meeting",
			})
		}

		if h := guidance.Evaluate(*d, now).StageHealth; h != nil {
			suggestion := "Review whether this deal is still alive"
			if h.SuggestedStage != nil {
				suggestion = fmt.Sprintf("Consider moving back to %s", *h.SuggestedStage)
			}
			unhealthy = append(unhealthy, Nudge{
				Priority:         h.Severity,
				Message:          fmt.Sprintf("%s: %s", d.Label(), h.Reason),
				DealID:           d.ID,
				ActionSuggestion: suggestion,
			})
		}
	}

	result := make([]Nudge, 0, len(overdue)+len(stale)+len(untouched)+len(unhealthy))
	result = append(result, overdue...)
	result = append(result, stale...)
	result = append(result, untouched...)
	return append(result, unhealthy...)
}

func orClient(org string) string {
	if org == "" {
		return "client"
	}
	return org
}
