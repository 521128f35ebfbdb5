package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/guidance"
	"github.com/HendryAvila/dealcoach/internal/stages"
	"github.com/mark3labs/mcp-go/mcp"
)

// DealUpdateTool handles the deal_update MCP tool. Only the arguments
// the caller sends are changed.
type DealUpdateTool struct {
	store    deals.Store
	observer DealObserver
}

// NewDealUpdateTool creates a DealUpdateTool with the given deal store.
func NewDealUpdateTool(store deals.Store) *DealUpdateTool {
	return &DealUpdateTool{store: store}
}

// SetObserver wires an optional observer notified on stage moves.
func (t *DealUpdateTool) SetObserver(obs DealObserver) {
	t.observer = obs
}

// Definition returns the MCP tool definition for registration.
func (t *DealUpdateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Update a deal. Send only the attributes that changed; an empty string clears a text field. " +
				"Moving the deal to a new stage resets its days-in-stage counter. " +
				"Returns the refreshed guidance so you can see what the change unlocked.",
		),
		mcp.WithString("deal_id",
			mcp.Required(),
			mcp.Description("ID of the deal to update"),
		),
	}
	opts = append(opts, dealOptions()...)
	return mcp.NewTool("deal_update", opts...)
}

// Handle processes the deal_update tool call.
func (t *DealUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("deal_id", "")
	if id == "" {
		return mcp.NewToolResultError("'deal_id' is required"), nil
	}

	p, err := patchFromArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if p.IsEmpty() {
		return mcp.NewToolResultError("Nothing to update: send at least one deal attribute."), nil
	}

	var from stages.Stage
	if t.observer != nil && p.Stage != nil {
		prev, err := t.store.Get(ctx, id)
		if errors.Is(err, deals.ErrNotFound) {
			return notFound(id), nil
		}
		if err != nil {
			return nil, fmt.Errorf("loading deal %s: %w", id, err)
		}
		from = prev.Stage
	}

	d, stageChanged, err := t.store.Update(ctx, id, p)
	if errors.Is(err, deals.ErrNotFound) {
		return notFound(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("updating deal %s: %w", id, err)
	}
	if stageChanged && t.observer != nil {
		t.observer.OnStageChanged(ctx, d, from)
	}

	r := guidance.Evaluate(*d, timeNow())
	response := fmt.Sprintf("Deal updated: %q\n", d.Label())
	if stageChanged {
		response += fmt.Sprintf("Stage moved to: %s\n", d.Stage)
	}
	response += fmt.Sprintf(
		"MEDDPICC: %d%%\n"+
			"Warnings: %d (%d critical)\n"+
			"Next best action: %s",
		r.Score, len(r.Warnings), r.CriticalCount(), formatAction(r.NextBestAction),
	)
	if r.StageHealth != nil {
		response += fmt.Sprintf("\nStage health: [%s] %s", r.StageHealth.Severity, r.StageHealth.Reason)
	}
	return mcp.NewToolResultText(response), nil
}
