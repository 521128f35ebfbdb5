package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/mark3labs/mcp-go/mcp"
)

// DealDeleteTool handles the deal_delete MCP tool.
type DealDeleteTool struct {
	store    deals.Store
	observer DealObserver
}

// NewDealDeleteTool creates a DealDeleteTool with the given deal store.
func NewDealDeleteTool(store deals.Store) *DealDeleteTool {
	return &DealDeleteTool{store: store}
}

// SetObserver wires an optional observer notified after each delete.
func (t *DealDeleteTool) SetObserver(obs DealObserver) {
	t.observer = obs
}

// Definition returns the MCP tool definition for registration.
func (t *DealDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("deal_delete",
		mcp.WithDescription(
			"Permanently delete a deal. Prefer moving dead deals to the `lost` stage "+
				"with `deal_update` so pipeline stats keep the history.",
		),
		mcp.WithString("deal_id",
			mcp.Required(),
			mcp.Description("ID of the deal to delete"),
		),
	)
}

// Handle processes the deal_delete tool call.
func (t *DealDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("deal_id", "")
	if id == "" {
		return mcp.NewToolResultError("'deal_id' is required"), nil
	}

	// The observer needs the record, which is gone after Delete.
	victim := &deals.Deal{ID: id}
	if t.observer != nil {
		d, err := t.store.Get(ctx, id)
		if errors.Is(err, deals.ErrNotFound) {
			return notFound(id), nil
		}
		if err != nil {
			return nil, fmt.Errorf("loading deal %s: %w", id, err)
		}
		victim = d
	}

	err := t.store.Delete(ctx, id)
	if errors.Is(err, deals.ErrNotFound) {
		return notFound(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("deleting deal %s: %w", id, err)
	}
	if t.observer != nil {
		t.observer.OnDealDeleted(ctx, victim)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deal %s deleted.", id)), nil
}
