package stages

// Definition is the prescriptive playbook for one stage.
type Definition struct {
	Stage             Stage    `json:"stage"`
	Label             string   `json:"label"`
	Objective         string   `json:"objective"`
	Actions           []string `json:"actions"`
	NextStageRequires string   `json:"next_stage_requires"`
}

// catalog holds one entry per ranked stage, in Order.
var catalog = []Definition{
	{
		Stage:     StageOutreach,
		Label:     "Outreach",
		Objective: "Get their attention and earn a meeting",
		Actions: []string{
			"Research the organization deeply (recent news, strategic initiatives, pain points)",
			"Find a warm connection path (LinkedIn, conferences, mutual contacts)",
			"Lead with insight, not product pitch - teach them something they did not know",
			"Personalize: reference their specific challenges (pilot purgatory, governance gaps)",
		},
		NextStageRequires: "Meeting scheduled with decision-influencer or higher",
	},
	{
		Stage:     StageTeach,
		Label:     "Teach",
		Objective: "Reframe their thinking and establish credibility",
		Actions: []string{
			"Deliver commercial insight that challenges their assumptions",
			"Show them a problem they did not know they had",
			"Quantify the cost of their current state (pilot purgatory costs)",
			"Position your offer as uniquely able to solve this newly-revealed problem",
		},
		NextStageRequires: "They acknowledge the problem and want to explore solutions",
	},
	{
		Stage:     StageQualify,
		Label:     "Qualify",
		Objective: "Determine if this is a real opportunity worth pursuing",
		Actions: []string{
			"Identify the Economic Buyer - who controls budget?",
			"Understand their timeline and urgency",
			"Confirm budget exists or can be created (fiscal year timing)",
			"Map the Decision Process - every step and stakeholder",
		},
		NextStageRequires: "MEDDPICC: M, E, D, P, I fields populated",
	},
	{
		Stage:     StageExpand,
		Label:     "Expand",
		Objective: "Build consensus and expand your influence",
		Actions: []string{
			"Identify and develop a Champion who will sell internally",
			"Map all stakeholders and their individual priorities",
			"Address competition explicitly - why you vs alternatives",
			"Tailor value messaging to each stakeholder role",
		},
		NextStageRequires: "Champion identified, multiple stakeholders engaged",
	},
	{
		Stage:     StagePropose,
		Label:     "Propose",
		Objective: "Present a solution aligned to their buying criteria",
		Actions: []string{
			"Confirm Decision Criteria are fully understood",
			"Present proposal that maps to their criteria point-by-point",
			"Include clear metrics and success measures",
			"Start Paper Process early - know what they need",
		},
		NextStageRequires: "Proposal delivered, verbal intent to proceed",
	},
	{
		Stage:     StageClose,
		Label:     "Close",
		Objective: "Navigate to signed contract",
		Actions: []string{
			"Drive Paper Process to completion - remove every obstacle",
			"Handle last-minute objections decisively",
			"Confirm implementation timeline and resources",
			"Get the signature - do not let momentum die",
		},
		NextStageRequires: "Signed contract",
	},
	{
		Stage:     StageWon,
		Label:     "Won",
		Objective: "Deliver value and build reference",
		Actions: []string{
			"Execute flawlessly on contracted scope",
			"Document wins and build case study",
			"Identify expansion opportunities",
			"Ask for referrals to peer organizations",
		},
		NextStageRequires: "N/A - Celebrate and deliver",
	},
}

// Definitions returns the ordered catalog. Each entry is a deep copy.
func Definitions() []Definition {
	result := make([]Definition, len(catalog))
	for i, d := range catalog {
		result[i] = clone(d)
	}
	return result
}

// Lookup returns the definition for s. Unknown stages, and lost, fall
// back to outreach; Lookup never fails.
func Lookup(s Stage) Definition {
	for _, d := range catalog {
		if d.Stage == s {
			return clone(d)
		}
	}
	return clone(catalog[0])
}

func clone(d Definition) Definition {
	actions := make([]string, len(d.Actions))
	copy(actions, d.Actions)
	d.Actions = actions
	return d
}
