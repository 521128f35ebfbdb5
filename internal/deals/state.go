package deals

import (
	"time"

	"github.com/HendryAvila/dealcoach/internal/meddpicc"
	"github.com/HendryAvila/dealcoach/internal/stages"
)

// --- Partial updates and stage-change tracking ---

// Patch is a partial update. Nil pointers and absent map keys keep the
// existing value; a pointer to "" clears a text field.
type Patch struct {
	Organization   *string
	Stage          *stages.Stage
	DealValue      *int64
	EngagementType *EngagementType
	NextAction     *string
	NextActionDate *time.Time
	Notes          *string
	Fields         map[meddpicc.FieldID]string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Organization == nil && p.Stage == nil && p.DealValue == nil &&
		p.EngagementType == nil && p.NextAction == nil && p.NextActionDate == nil &&
		p.Notes == nil && len(p.Fields) == 0
}

// ApplyPatch merges p into d and stamps UpdatedAt. When the stage moves,
// StageEnteredAt resets to now. It reports whether the stage changed.
// The merged deal is validated; on error d is left untouched.
func ApplyPatch(d *Deal, p Patch, now time.Time) (bool, error) {
	next := *d

	if p.Organization != nil {
		next.Organization = *p.Organization
	}
	if p.Stage != nil {
		next.Stage = *p.Stage
	}
	if p.DealValue != nil {
		next.DealValue = *p.DealValue
	}
	if p.EngagementType != nil {
		next.EngagementType = *p.EngagementType
	}
	if p.NextAction != nil {
		next.NextAction = *p.NextAction
	}
	if p.NextActionDate != nil {
		next.NextActionDate = *p.NextActionDate
	}
	if p.Notes != nil {
		next.Notes = *p.Notes
	}
	for id, v := range p.Fields {
		next.SetField(id, v)
	}

	if err := next.Validate(); err != nil {
		return false, err
	}

	changed := next.Stage != d.Stage
	if changed {
		next.StageEnteredAt = now
	}
	next.UpdatedAt = now

	*d = next
	return changed, nil
}

// DaysInStage returns whole days since the deal entered its stage, or 0
// when the entry time is unknown or in the future.
func DaysInStage(d *Deal, now time.Time) int {
	if d.StageEnteredAt.IsZero() || now.Before(d.StageEnteredAt) {
		return 0
	}
	return int(now.Sub(d.StageEnteredAt) / (24 * time.Hour))
}
