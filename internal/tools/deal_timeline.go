package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/dealcoach/internal/activity"
	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/mark3labs/mcp-go/mcp"
)

// DealTimelineTool handles the deal_timeline MCP tool.
type DealTimelineTool struct {
	store   deals.Store
	journal *activity.Store
}

// NewDealTimelineTool creates a DealTimelineTool.
func NewDealTimelineTool(store deals.Store, journal *activity.Store) *DealTimelineTool {
	return &DealTimelineTool{store: store, journal: journal}
}

// Definition returns the MCP tool definition for registration.
func (t *DealTimelineTool) Definition() mcp.Tool {
	return mcp.NewTool("deal_timeline",
		mcp.WithDescription(
			"Show the interactions logged on a deal, most recent first. "+
				"Use before a call to recall what was said last time.",
		),
		mcp.WithString("deal_id",
			mcp.Required(),
			mcp.Description("ID of the deal"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Max interactions (default: %d, max: %d)", activity.DefaultLimit, activity.MaxLimit)),
		),
		mcp.WithString("detail_level",
			mcp.Description(
				"Level of detail: 'summary' (one line each), "+
					"'standard' (default, with a short snippet of the details), "+
					"'full' (complete details).",
			),
			mcp.Enum(activity.DetailLevelValues()...),
		),
	)
}

// Handle processes the deal_timeline tool call.
func (t *DealTimelineTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("deal_id", "")
	if id == "" {
		return mcp.NewToolResultError("'deal_id' is required"), nil
	}
	limit := intArg(req, "limit", activity.DefaultLimit)
	detailLevel := activity.ParseDetailLevel(req.GetString("detail_level", ""))

	d, err := t.store.Get(ctx, id)
	if errors.Is(err, deals.ErrNotFound) {
		return notFound(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading deal %s: %w", id, err)
	}

	items, err := t.journal.Interactions(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("loading timeline for %s: %w", id, err)
	}
	if len(items) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No interactions logged for %q yet. Use `deal_log_interaction` after your next touchpoint.", d.Label(),
		)), nil
	}

	counts, err := t.journal.InteractionCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting interactions: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Timeline: %s (%d interactions)\n\n", d.Label(), counts[id])
	for _, in := range items {
		fmt.Fprintf(&b, "- %s **%s** %s (#%d)\n", in.OccurredAt.Format(deals.DateLayout), in.Type, in.Summary, in.ID)
		if in.Details == "" {
			continue
		}
		switch detailLevel {
		case activity.DetailStandard:
			fmt.Fprintf(&b, "  %s\n", activity.Truncate(flatten(in.Details), 200))
		case activity.DetailFull:
			fmt.Fprintf(&b, "  %s\n", strings.ReplaceAll(in.Details, "\n", "\n  "))
		}
	}
	b.WriteString(activity.NavigationHint(len(items), counts[id], "Raise `limit` to see older interactions."))

	return mcp.NewToolResultText(b.String()), nil
}

// flatten joins lines so a snippet stays on one bullet.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
