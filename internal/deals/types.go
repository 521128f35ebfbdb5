// Package deals holds the deal record and its persistence.
//
// A Deal is the input to guidance evaluation: a stage, eight MEDDPICC
// free-text fields and a handful of timestamps. The package owns the
// write-side rules (validation, stage-change tracking) and a SQLite-backed
// Store. Guidance itself never writes a deal.
package deals

import (
	"errors"
	"fmt"
	"time"

	"github.com/HendryAvila/dealcoach/internal/meddpicc"
	"github.com/HendryAvila/dealcoach/internal/stages"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a deal id has no record.
var ErrNotFound = errors.New("deal not found")

// --- Engagement type enum ---

// EngagementType describes the commercial shape of the deal.
type EngagementType string

const (
	EngagementAdvisor    EngagementType = "advisor"
	EngagementActivator  EngagementType = "activator"
	EngagementAssessment EngagementType = "assessment"
	EngagementSDK        EngagementType = "sdk"
)

var validEngagements = map[EngagementType]bool{
	EngagementAdvisor:    true,
	EngagementActivator:  true,
	EngagementAssessment: true,
	EngagementSDK:        true,
}

// ValidateEngagement returns an error if t is not recognized.
func ValidateEngagement(t EngagementType) error {
	if !validEngagements[t] {
		return fmt.Errorf("invalid engagement type %q: must be one of: advisor, activator, assessment, sdk", t)
	}
	return nil
}

// --- Deal ---

// DateLayout is the storage and wire format of NextActionDate.
const DateLayout = "2006-01-02"

// Deal is a single opportunity being worked through the funnel.
// Zero times mean "not recorded".
type Deal struct {
	ID             string         `json:"id" yaml:"id"`
	Organization   string         `json:"organization,omitempty" yaml:"organization"`
	Stage          stages.Stage   `json:"stage" yaml:"stage"`
	DealValue      int64          `json:"deal_value" yaml:"deal_value"`
	EngagementType EngagementType `json:"engagement_type,omitempty" yaml:"engagement_type"`
	NextAction     string         `json:"next_action,omitempty" yaml:"next_action"`
	NextActionDate time.Time      `json:"next_action_date,omitzero" yaml:"next_action_date"`
	Notes          string         `json:"notes,omitempty" yaml:"notes"`

	Metrics          string `json:"metrics" yaml:"metrics"`
	EconomicBuyer    string `json:"economic_buyer" yaml:"economic_buyer"`
	DecisionCriteria string `json:"decision_criteria" yaml:"decision_criteria"`
	DecisionProcess  string `json:"decision_process" yaml:"decision_process"`
	PaperProcess     string `json:"paper_process" yaml:"paper_process"`
	IdentifiedPain   string `json:"identified_pain" yaml:"identified_pain"`
	Champion         string `json:"champion" yaml:"champion"`
	Competition      string `json:"competition" yaml:"competition"`

	StageEnteredAt time.Time `json:"stage_entered_at,omitzero" yaml:"stage_entered_at"`
	CreatedAt      time.Time `json:"created_at,omitzero" yaml:"created_at"`
	UpdatedAt      time.Time `json:"updated_at,omitzero" yaml:"updated_at"`
}

// NewID returns a fresh deal identifier.
func NewID() string {
	return uuid.NewString()
}

// Field returns the value of a MEDDPICC field. Unknown ids read as blank.
func (d *Deal) Field(id meddpicc.FieldID) string {
	if p := d.fieldPtr(id); p != nil {
		return *p
	}
	return ""
}

// SetField assigns a MEDDPICC field. Unknown ids are ignored.
func (d *Deal) SetField(id meddpicc.FieldID, value string) {
	if p := d.fieldPtr(id); p != nil {
		*p = value
	}
}

func (d *Deal) fieldPtr(id meddpicc.FieldID) *string {
	switch id {
	case meddpicc.FieldMetrics:
		return &d.Metrics
	case meddpicc.FieldEconomicBuyer:
		return &d.EconomicBuyer
	case meddpicc.FieldDecisionCriteria:
		return &d.DecisionCriteria
	case meddpicc.FieldDecisionProcess:
		return &d.DecisionProcess
	case meddpicc.FieldPaperProcess:
		return &d.PaperProcess
	case meddpicc.FieldIdentifiedPain:
		return &d.IdentifiedPain
	case meddpicc.FieldChampion:
		return &d.Champion
	case meddpicc.FieldCompetition:
		return &d.Competition
	}
	return nil
}

// FilledCount returns how many MEDDPICC fields are captured.
func (d *Deal) FilledCount() int {
	n := 0
	for _, id := range meddpicc.IDs() {
		if meddpicc.Filled(d.Field(id)) {
			n++
		}
	}
	return n
}

// Label returns the organization name, or a generic placeholder.
func (d *Deal) Label() string {
	if d.Organization != "" {
		return d.Organization
	}
	return "Deal"
}

// applyDefaults fills the write-side defaults of a new record.
func (d *Deal) applyDefaults() {
	if d.Stage == "" {
		d.Stage = stages.StageOutreach
	}
	if d.EngagementType == "" {
		d.EngagementType = EngagementAdvisor
	}
}

// Validate checks the fields the store refuses to persist.
func (d *Deal) Validate() error {
	if !d.Stage.Valid() {
		_, err := stages.Parse(string(d.Stage))
		return err
	}
	if err := ValidateEngagement(d.EngagementType); err != nil {
		return err
	}
	if d.DealValue < 0 {
		return fmt.Errorf("invalid deal value %d: must not be negative", d.DealValue)
	}
	return nil
}
