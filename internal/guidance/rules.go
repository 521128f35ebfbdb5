package guidance

import (
	"fmt"
	"slices"

	"github.com/HendryAvila/dealcoach/internal/meddpicc"
	"github.com/HendryAvila/dealcoach/internal/stages"
)

// Every rule set below is an ordered table. Order is part of the
// contract: warnings are emitted in table order, and the stage-health and
// next-action tables stop at the first match.

// --- Recency ---

const (
	// coldAfterDays: beyond this the deal is going cold (critical).
	coldAfterDays = 14
	// touchpointAfterDays: beyond this a touchpoint is due (high).
	touchpointAfterDays = 7
	// reviewAfterDays: beyond this the stage itself needs review.
	reviewAfterDays = 30
	// lowCompleteness is the score under which an expanding deal is
	// judged to still be qualifying.
	lowCompleteness = 40
)

func recencyWarning(in input) (Warning, bool) {
	switch {
	case in.days > coldAfterDays:
		return Warning{
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("No activity in %d days - deal is going cold", in.days),
			Action:   "Reach out TODAY with a value-add touchpoint",
		}, true
	case in.days > touchpointAfterDays:
		return Warning{
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("%d days since last update", in.days),
			Action:   "Schedule next touchpoint this week",
		}, true
	}
	return Warning{}, false
}

// --- Missing-field warnings ---

var (
	qualifyThroughClose = []stages.Stage{stages.StageQualify, stages.StageExpand, stages.StagePropose, stages.StageClose}
	expandThroughClose  = []stages.Stage{stages.StageExpand, stages.StagePropose, stages.StageClose}
	proposeThroughClose = []stages.Stage{stages.StagePropose, stages.StageClose}
)

type fieldRule struct {
	during   []stages.Stage
	field    meddpicc.FieldID
	severity Severity
	message  string
	action   string
}

var fieldRules = []fieldRule{
	{
		during:   qualifyThroughClose,
		field:    meddpicc.FieldEconomicBuyer,
		severity: SeverityCritical,
		message:  "No Economic Buyer identified",
		action:   `Ask your champion: "Who ultimately signs off on this budget?"`,
	},
	{
		during:   qualifyThroughClose,
		field:    meddpicc.FieldIdentifiedPain,
		severity: SeverityCritical,
		message:  "Pain not documented",
		action:   "You cannot close a deal without clear pain. Revisit discovery.",
	},
	{
		during:   expandThroughClose,
		field:    meddpicc.FieldChampion,
		severity: SeverityHigh,
		message:  "No Champion identified",
		action:   "Who is selling for you when you are not in the room? Find and develop them.",
	},
	{
		during:   expandThroughClose,
		field:    meddpicc.FieldDecisionCriteria,
		severity: SeverityHigh,
		message:  "Decision Criteria unknown",
		action:   `Ask: "What factors will you evaluate when making this decision?"`,
	},
	{
		during:   proposeThroughClose,
		field:    meddpicc.FieldPaperProcess,
		severity: SeverityMedium,
		message:  "Paper Process not mapped",
		action:   `Ask: "What does your organization require to get a contract signed?"`,
	},
	{
		during:   proposeThroughClose,
		field:    meddpicc.FieldMetrics,
		severity: SeverityMedium,
		message:  "Success metrics not defined",
		action:   "Quantify expected outcomes - this strengthens the business case",
	},
}

func deriveWarnings(in input) []Warning {
	warnings := []Warning{}
	if w, ok := recencyWarning(in); ok {
		warnings = append(warnings, w)
	}
	for _, r := range fieldRules {
		if !slices.Contains(r.during, in.stage) || in.filled(r.field) {
			continue
		}
		warnings = append(warnings, Warning{Severity: r.severity, Message: r.message, Action: r.action})
	}
	return warnings
}

// --- Stage health ---

type healthRule struct {
	matches     func(in input) bool
	severity    Severity
	target      stages.Stage // "" means review only
	reason      string
	explanation string
}

var healthRules = []healthRule{
	{
		matches:  func(in input) bool { return in.atLeast(stages.StageExpand) && !in.filled(meddpicc.FieldChampion) },
		severity: SeverityCritical,
		target:   stages.StageQualify,
		reason:   "No champion past Qualify",
		explanation: "Expanding, proposing or closing requires someone inside selling for you. " +
			"Without a champion this deal is still being qualified.",
	},
	{
		matches:  func(in input) bool { return in.atLeast(stages.StageQualify) && !in.filled(meddpicc.FieldEconomicBuyer) },
		severity: SeverityHigh,
		target:   stages.StageTeach,
		reason:   "No economic buyer while qualifying",
		explanation: "A deal is not qualified until you know who controls the budget. " +
			"Go back to teaching until the buyer is engaged.",
	},
	{
		matches: func(in input) bool {
			return in.atLeast(stages.StagePropose) && !in.filled(meddpicc.FieldDecisionCriteria)
		},
		severity: SeverityHigh,
		target:   stages.StageQualify,
		reason:   "Proposing without decision criteria",
		explanation: "A proposal has to map to how they will decide. " +
			"Without their criteria you are guessing, which is still qualification work.",
	},
	{
		matches:  func(in input) bool { return in.atLeast(stages.StageClose) && !in.filled(meddpicc.FieldPaperProcess) },
		severity: SeverityMedium,
		target:   stages.StagePropose,
		reason:   "Closing without a mapped paper process",
		explanation: "You cannot drive a signature through a process you have not mapped. " +
			"Treat the deal as still in proposal until the paper process is known.",
	},
	{
		matches:  func(in input) bool { return in.days > reviewAfterDays },
		severity: SeverityCritical,
		reason:   "No activity in over 30 days",
		explanation: "A month of silence usually means the deal has stalled or died. " +
			"Review whether the stage still reflects reality before investing more time.",
	},
	{
		matches:  func(in input) bool { return in.atLeast(stages.StageExpand) && in.score < lowCompleteness },
		severity: SeverityHigh,
		target:   stages.StageQualify,
		reason:   "Qualification data too thin for this stage",
		explanation: "Less than 40% of MEDDPICC is captured. " +
			"Late-stage deals built on this little information rarely close.",
	},
}

func deriveStageHealth(in input) *StageHealth {
	for _, r := range healthRules {
		if !r.matches(in) {
			continue
		}
		h := &StageHealth{
			Severity:     r.severity,
			Reason:       r.reason,
			Explanation:  r.explanation,
			CurrentStage: in.stage,
		}
		if r.target != "" {
			target := r.target
			h.SuggestedStage = &target
		}
		return h
	}
	return nil
}

// --- Next-best action ---

type actionRule func(in input, warnings []Warning) (Action, bool)

var actionRules = []actionRule{
	firstCritical,
	touchpointDue,
	nextActionMissing,
}

func firstCritical(_ input, warnings []Warning) (Action, bool) {
	for _, w := range warnings {
		if w.Severity == SeverityCritical {
			return Action{Message: w.Message, Action: w.Action}, true
		}
	}
	return Action{}, false
}

func touchpointDue(in input, _ []Warning) (Action, bool) {
	if in.days <= touchpointAfterDays {
		return Action{}, false
	}
	action := in.nextAction()
	if action == "" {
		action = in.definition.Actions[0]
	}
	return Action{Message: "Time for a touchpoint", Action: action}, true
}

func nextActionMissing(in input, _ []Warning) (Action, bool) {
	if in.nextAction() != "" {
		return Action{}, false
	}
	return Action{Message: "No next action defined", Action: "Set a specific next action with a date"}, true
}

func deriveNextBestAction(in input, warnings []Warning) Action {
	for _, rule := range actionRules {
		if a, ok := rule(in, warnings); ok {
			return a
		}
	}
	return Action{Message: "Execute your next action", Action: in.nextAction()}
}
