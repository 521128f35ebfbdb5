package guidance

import (
	"math"
	"strings"
	"time"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/meddpicc"
	"github.com/HendryAvila/dealcoach/internal/stages"
)

// NeverUpdated is the day count used when a deal has no update timestamp.
// A missing timestamp is maximally stale, never fresh.
const NeverUpdated = 999

// Evaluate produces the guidance for d as of now. It never fails:
// blank fields read as missing, unknown stages as outreach and a missing
// update time as NeverUpdated days ago.
func Evaluate(d deals.Deal, now time.Time) Result {
	in := newInput(d, now)

	warnings := deriveWarnings(in)
	return Result{
		Score:           in.score,
		Fields:          in.fieldStatus(),
		Warnings:        warnings,
		StageHealth:     deriveStageHealth(in),
		Stage:           in.definition,
		NextBestAction:  deriveNextBestAction(in, warnings),
		DaysSinceUpdate: in.days,
	}
}

// DaysSince returns whole days elapsed from then to now, rounding down.
// A zero then yields NeverUpdated.
func DaysSince(then, now time.Time) int {
	if then.IsZero() {
		return NeverUpdated
	}
	return int(math.Floor(now.Sub(then).Hours() / 24))
}

// input is the normalized view every rule reads.
type input struct {
	deal       deals.Deal
	stage      stages.Stage
	definition stages.Definition
	days       int
	score      int
}

func newInput(d deals.Deal, now time.Time) input {
	stage := stages.Normalize(string(d.Stage))
	return input{
		deal:       d,
		stage:      stage,
		definition: stages.Lookup(stage),
		days:       DaysSince(d.UpdatedAt, now),
		score:      meddpicc.Score(d.FilledCount()),
	}
}

func (in input) filled(id meddpicc.FieldID) bool {
	return meddpicc.Filled(in.deal.Field(id))
}

func (in input) atLeast(floor stages.Stage) bool {
	return stages.AtLeast(in.stage, floor)
}

// nextAction returns the deal's own next action, trimmed; "" when unset.
func (in input) nextAction() string {
	return strings.TrimSpace(in.deal.NextAction)
}

func (in input) fieldStatus() []FieldStatus {
	fields := meddpicc.Fields()
	status := make([]FieldStatus, len(fields))
	for i, f := range fields {
		v := in.deal.Field(f.ID)
		status[i] = FieldStatus{Field: f, Filled: meddpicc.Filled(v), Value: v}
	}
	return status
}
