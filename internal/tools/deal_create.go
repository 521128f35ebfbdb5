package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/guidance"
	"github.com/HendryAvila/dealcoach/internal/stages"
	"github.com/mark3labs/mcp-go/mcp"
)

// DealCreateTool handles the deal_create MCP tool.
type DealCreateTool struct {
	store    deals.Store
	observer DealObserver
}

// NewDealCreateTool creates a DealCreateTool with the given deal store.
func NewDealCreateTool(store deals.Store) *DealCreateTool {
	return &DealCreateTool{store: store}
}

// SetObserver wires an optional observer notified after each create.
func (t *DealCreateTool) SetObserver(obs DealObserver) {
	t.observer = obs
}

// Definition returns the MCP tool definition for registration.
func (t *DealCreateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Create a deal. Only `organization` is required; the deal starts in `outreach` " +
				"unless a stage is given. Returns the new deal ID and its first guidance.",
		),
	}
	opts = append(opts, dealOptions()...)
	tool := mcp.NewTool("deal_create", opts...)
	tool.InputSchema.Required = append(tool.InputSchema.Required, "organization")
	return tool
}

// Handle processes the deal_create tool call.
func (t *DealCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if strings.TrimSpace(req.GetString("organization", "")) == "" {
		return mcp.NewToolResultError("'organization' is required"), nil
	}

	p, err := patchFromArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	now := timeNow().UTC()
	d := &deals.Deal{Stage: stages.StageOutreach, EngagementType: deals.EngagementAdvisor}
	if _, err := deals.ApplyPatch(d, p, now); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d.StageEnteredAt = now

	if err := t.store.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("creating deal: %w", err)
	}
	if t.observer != nil {
		t.observer.OnDealCreated(ctx, d)
	}

	r := guidance.Evaluate(*d, now)
	response := fmt.Sprintf(
		"Deal created: %q\n"+
			"ID: %s\n"+
			"Stage: %s\n"+
			"MEDDPICC: %d%%\n"+
			"Next best action: %s",
		d.Label(), d.ID, d.Stage, r.Score, formatAction(r.NextBestAction),
	)
	return mcp.NewToolResultText(response), nil
}

func formatAction(a guidance.Action) string {
	if a.Action == "" {
		return a.Message
	}
	return a.Message + " - " + a.Action
}
