// Package meddpicc holds the qualification field catalog.
//
// MEDDPICC is an eight-factor checklist (Metrics, Economic buyer, Decision
// criteria, Decision process, Paper process, Identified pain, Champion,
// Competition). The catalog is static: it carries the label, mnemonic,
// elicitation question and coaching text for each field. Order matters
// only for display, never for scoring.
package meddpicc

import (
	"math"
	"strings"
)

// FieldID identifies one qualification field.
type FieldID string

const (
	FieldMetrics          FieldID = "metrics"
	FieldEconomicBuyer    FieldID = "economic_buyer"
	FieldDecisionCriteria FieldID = "decision_criteria"
	FieldDecisionProcess  FieldID = "decision_process"
	FieldPaperProcess     FieldID = "paper_process"
	FieldIdentifiedPain   FieldID = "identified_pain"
	FieldChampion         FieldID = "champion"
	FieldCompetition      FieldID = "competition"
)

// Field is the static definition of a qualification field.
type Field struct {
	ID       FieldID `json:"id"`
	Label    string  `json:"label"`
	Letter   string  `json:"letter"`
	Question string  `json:"question"`
	Examples string  `json:"examples"`
	Coaching string  `json:"coaching"`
}

// catalog is the ordered field list. Never hand it out directly.
var catalog = []Field{
	{
		ID:       FieldMetrics,
		Label:    "Metrics",
		Letter:   "M",
		Question: "What quantifiable outcomes will they achieve?",
		Examples: "Reduce readmissions by 15%, Cut AI pilot-to-production time by 50%",
		Coaching: `Without clear metrics, the deal lacks urgency. Ask: "What would success look like in numbers?"`,
	},
	{
		ID:       FieldEconomicBuyer,
		Label:    "Economic Buyer",
		Letter:   "E",
		Question: "Who controls the budget and can sign?",
		Examples: "CFO, VP Finance, CIO with budget authority",
		Coaching: "If you do not have access to the economic buyer, you are not in control of this deal.",
	},
	{
		ID:       FieldDecisionCriteria,
		Label:    "Decision Criteria",
		Letter:   "D",
		Question: "What factors will they evaluate solutions on?",
		Examples: "Price, integration ease, compliance, time-to-value, vendor stability",
		Coaching: `You must know their criteria to position your solution correctly. Ask: "What will you be comparing when making this decision?"`,
	},
	{
		ID:       FieldDecisionProcess,
		Label:    "Decision Process",
		Letter:   "D",
		Question: "What steps do they take to make a decision?",
		Examples: "Committee review → CFO approval → Legal → Procurement",
		Coaching: "Map every step and stakeholder. Deals stall when you discover new steps late.",
	},
	{
		ID:       FieldPaperProcess,
		Label:    "Paper Process",
		Letter:   "P",
		Question: "What is required to get a contract signed?",
		Examples: "3 quotes required, legal redlines, insurance cert, vendor registration",
		Coaching: "Start this early. Paper process is where deals go to die.",
	},
	{
		ID:       FieldIdentifiedPain,
		Label:    "Identified Pain",
		Letter:   "I",
		Question: "What specific problem are we solving?",
		Examples: "Stuck in pilot purgatory, governance gaps, no AI strategy alignment",
		Coaching: "No pain = no deal. If they are not actively hurting, this is not a real opportunity.",
	},
	{
		ID:       FieldChampion,
		Label:    "Champion",
		Letter:   "C",
		Question: "Who inside is selling for you when you are not in the room?",
		Examples: "Dr. Mike Chen (CMO) - personally invested in AI success",
		Coaching: "A true champion has power, influence, and personal stake in your success.",
	},
	{
		ID:       FieldCompetition,
		Label:    "Competition",
		Letter:   "C",
		Question: "Who else are they considering?",
		Examples: "IBM Watson, Internal IT team, Big 4 consultants, Status quo",
		Coaching: "Status quo is your biggest competitor. Quantify the cost of doing nothing.",
	},
}

// Total is the number of qualification fields.
const Total = 8

// Fields returns the ordered catalog. The slice is a copy.
func Fields() []Field {
	result := make([]Field, len(catalog))
	copy(result, catalog)
	return result
}

// IDs returns the field ids in catalog order.
func IDs() []FieldID {
	ids := make([]FieldID, len(catalog))
	for i, f := range catalog {
		ids[i] = f.ID
	}
	return ids
}

// Lookup returns the definition for id.
func Lookup(id FieldID) (Field, bool) {
	for _, f := range catalog {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Filled reports whether a field value counts as captured: non-empty
// after trimming whitespace.
func Filled(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Score converts a filled-field count into a 0-100 completeness score,
// rounding half away from zero.
func Score(filled int) int {
	if filled <= 0 {
		return 0
	}
	if filled >= Total {
		return 100
	}
	return int(math.Round(float64(filled) / float64(Total) * 100))
}
