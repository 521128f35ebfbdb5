// Package stages defines the sales methodology stage catalog.
//
// Stages are totally ordered: outreach → teach → qualify → expand →
// propose → close → won. The rank is load-bearing: guidance rules compare
// "stage ≥ X" and pick regression targets from it. Lost is a valid deal
// stage but has no catalog entry and no rank of its own.
package stages

import (
	"fmt"
	"strings"
)

// Stage identifies a position in the sales funnel.
type Stage string

const (
	StageOutreach Stage = "outreach"
	StageTeach    Stage = "teach"
	StageQualify  Stage = "qualify"
	StageExpand   Stage = "expand"
	StagePropose  Stage = "propose"
	StageClose    Stage = "close"
	StageWon      Stage = "won"
	StageLost     Stage = "lost"
)

// Order is the ranked stage sequence. Lost is deliberately absent.
var Order = []Stage{
	StageOutreach,
	StageTeach,
	StageQualify,
	StageExpand,
	StagePropose,
	StageClose,
	StageWon,
}

// validStages is the set of stages a deal may be stored with.
var validStages = map[Stage]bool{
	StageOutreach: true,
	StageTeach:    true,
	StageQualify:  true,
	StageExpand:   true,
	StagePropose:  true,
	StageClose:    true,
	StageWon:      true,
	StageLost:     true,
}

// Valid reports whether s is a known deal stage (including lost).
func (s Stage) Valid() bool {
	return validStages[s]
}

// Parse validates a stage name for write paths. Surrounding whitespace
// and case are ignored.
func Parse(raw string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid stage %q: must be one of: outreach, teach, qualify, expand, propose, close, won, lost", raw)
	}
	return s, nil
}

// Normalize is the fail-soft reader: unknown or empty names resolve to
// outreach. Lost is preserved.
func Normalize(raw string) Stage {
	s, err := Parse(raw)
	if err != nil {
		return StageOutreach
	}
	return s
}

// Index returns the rank of s in Order. Unknown stages and lost rank 0,
// the same as outreach.
func Index(s Stage) int {
	for i, o := range Order {
		if o == s {
			return i
		}
	}
	return 0
}

// AtLeast reports whether s ranks at or beyond floor.
func AtLeast(s, floor Stage) bool {
	return Index(s) >= Index(floor)
}

// IsTerminal reports whether the deal is finished, won or lost.
func IsTerminal(s Stage) bool {
	return s == StageWon || s == StageLost
}
