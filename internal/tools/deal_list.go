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

// DealListTool handles the deal_list MCP tool.
type DealListTool struct {
	store        deals.Store
	defaultLimit int
}

// NewDealListTool creates a DealListTool. defaultLimit applies when the
// caller gives no limit; 0 means unlimited.
func NewDealListTool(store deals.Store, defaultLimit int) *DealListTool {
	return &DealListTool{store: store, defaultLimit: defaultLimit}
}

// Definition returns the MCP tool definition for registration.
func (t *DealListTool) Definition() mcp.Tool {
	return mcp.NewTool("deal_list",
		mcp.WithDescription(
			"List deals in funnel order (earliest stage first, newest first within a stage) "+
				"with their MEDDPICC score and most severe open issue.",
		),
		mcp.WithString("stage",
			mcp.Description("Only deals in this stage"),
			mcp.Enum(stageNames()...),
		),
		mcp.WithBoolean("open_only",
			mcp.Description("Exclude won and lost deals (default: false)"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of deals (default: %d)", t.defaultLimit)),
		),
	)
}

// Handle processes the deal_list tool call.
func (t *DealListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := deals.ListOptions{
		OpenOnly: boolArg(req, "open_only", false),
		Limit:    intArg(req, "limit", t.defaultLimit),
	}
	if opts.Limit < 0 {
		return mcp.NewToolResultError("'limit' must not be negative"), nil
	}
	if raw := req.GetString("stage", ""); raw != "" {
		s, err := stages.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		opts.Stage = s
	}

	all, err := t.store.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing deals: %w", err)
	}
	if len(all) == 0 {
		return mcp.NewToolResultText("No deals found. Create one with `deal_create`."), nil
	}

	now := timeNow()
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Deals (%d)\n\n", len(all))
	sb.WriteString("| ID | Organization | Stage | Value | MEDDPICC | Top issue |\n")
	sb.WriteString("|----|--------------|-------|-------|----------|-----------|\n")
	for i := range all {
		d := &all[i]
		r := guidance.Evaluate(*d, now)
		issue := "—"
		if top := r.HighestSeverity(); top != "" {
			issue = string(top)
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %d | %d%% | %s |\n",
			d.ID, d.Label(), d.Stage, d.DealValue, r.Score, issue)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
