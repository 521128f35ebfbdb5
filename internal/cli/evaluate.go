package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/guidance"
	"github.com/HendryAvila/dealcoach/internal/meddpicc"
	"github.com/HendryAvila/dealcoach/internal/render"
	"github.com/HendryAvila/dealcoach/internal/stages"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// dealFile is the on-disk shape accepted by evaluate. Times are strings so
// both bare dates and RFC 3339 timestamps are accepted.
type dealFile struct {
	ID               string `yaml:"id"`
	Organization     string `yaml:"organization"`
	Stage            string `yaml:"stage"`
	DealValue        int64  `yaml:"deal_value"`
	EngagementType   string `yaml:"engagement_type"`
	NextAction       string `yaml:"next_action"`
	NextActionDate   string `yaml:"next_action_date"`
	Notes            string `yaml:"notes"`
	Metrics          string `yaml:"metrics"`
	EconomicBuyer    string `yaml:"economic_buyer"`
	DecisionCriteria string `yaml:"decision_criteria"`
	DecisionProcess  string `yaml:"decision_process"`
	PaperProcess     string `yaml:"paper_process"`
	IdentifiedPain   string `yaml:"identified_pain"`
	Champion         string `yaml:"champion"`
	Competition      string `yaml:"competition"`
	StageEnteredAt   string `yaml:"stage_entered_at"`
	UpdatedAt        string `yaml:"updated_at"`
}

func (f dealFile) toDeal() (*deals.Deal, error) {
	d := &deals.Deal{
		ID:             f.ID,
		Organization:   f.Organization,
		Stage:          stages.Stage(f.Stage),
		DealValue:      f.DealValue,
		EngagementType: deals.EngagementType(f.EngagementType),
		NextAction:     f.NextAction,
		Notes:          f.Notes,
	}
	for id, v := range map[meddpicc.FieldID]string{
		meddpicc.FieldMetrics:          f.Metrics,
		meddpicc.FieldEconomicBuyer:    f.EconomicBuyer,
		meddpicc.FieldDecisionCriteria: f.DecisionCriteria,
		meddpicc.FieldDecisionProcess:  f.DecisionProcess,
		meddpicc.FieldPaperProcess:     f.PaperProcess,
		meddpicc.FieldIdentifiedPain:   f.IdentifiedPain,
		meddpicc.FieldChampion:         f.Champion,
		meddpicc.FieldCompetition:      f.Competition,
	} {
		d.SetField(id, v)
	}

	var err error
	if d.NextActionDate, err = deals.ParseDate(f.NextActionDate); err != nil {
		return nil, fmt.Errorf("next_action_date: %w", err)
	}
	if d.StageEnteredAt, err = deals.ParseTimestamp(f.StageEnteredAt); err != nil {
		return nil, fmt.Errorf("stage_entered_at: %w", err)
	}
	if d.UpdatedAt, err = deals.ParseTimestamp(f.UpdatedAt); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	return d, nil
}

type evaluateOptions struct {
	asJSON bool
	now    string
}

func newEvaluateCommand() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate <deal-file>",
		Short: "Coach one deal described in a YAML or JSON file",
		Long: `Evaluate a deal without a database. The file uses the same keys as the
MCP tools, for example:

  organization: MGH
  stage: propose
  updated_at: 2026-03-01
  next_action: Send pricing to CFO
  economic_buyer: CFO
  identified_pain: Manual scheduling across 3 sites`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	cmd.Flags().StringVar(&opts.now, "now", "", "evaluate as of this time (RFC 3339 or YYYY-MM-DD)")
	return cmd
}

func runEvaluate(cmd *cobra.Command, path string, opts *evaluateOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading deal file: %w", err)
	}

	var f dealFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing deal file %s: %w", path, err)
	}
	d, err := f.toDeal()
	if err != nil {
		return fmt.Errorf("parsing deal file %s: %w", path, err)
	}

	now := timeNow()
	if opts.now != "" {
		if now, err = deals.ParseTimestamp(opts.now); err != nil {
			return fmt.Errorf("--now: %w", err)
		}
	}

	r := guidance.Evaluate(*d, now)

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Deal     *deals.Deal     `json:"deal"`
			Guidance guidance.Result `json:"guidance"`
		}{d, r})
	}
	_, err = fmt.Fprint(out, render.Terminal(d, r))
	return err
}
