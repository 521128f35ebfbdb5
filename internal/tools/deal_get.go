package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/mark3labs/mcp-go/mcp"
)

// DealGetTool handles the deal_get MCP tool.
type DealGetTool struct {
	store deals.Store
}

// NewDealGetTool creates a DealGetTool with the given deal store.
func NewDealGetTool(store deals.Store) *DealGetTool {
	return &DealGetTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *DealGetTool) Definition() mcp.Tool {
	return mcp.NewTool("deal_get",
		mcp.WithDescription("Return the full deal record as JSON, including every MEDDPICC field and timestamp."),
		mcp.WithString("deal_id",
			mcp.Required(),
			mcp.Description("ID of the deal"),
		),
	)
}

// Handle processes the deal_get tool call.
func (t *DealGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("deal_id", "")
	if id == "" {
		return mcp.NewToolResultError("'deal_id' is required"), nil
	}

	d, err := t.store.Get(ctx, id)
	if errors.Is(err, deals.ErrNotFound) {
		return notFound(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading deal %s: %w", id, err)
	}
	return jsonResult(d)
}
