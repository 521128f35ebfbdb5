package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/dealcoach/internal/activity"
	"github.com/mark3labs/mcp-go/mcp"
)

// ActivityRecentTool handles the activity_recent MCP tool.
type ActivityRecentTool struct {
	journal *activity.Store
}

// NewActivityRecentTool creates an ActivityRecentTool.
func NewActivityRecentTool(journal *activity.Store) *ActivityRecentTool {
	return &ActivityRecentTool{journal: journal}
}

// Definition returns the MCP tool definition for registration.
func (t *ActivityRecentTool) Definition() mcp.Tool {
	return mcp.NewTool("activity_recent",
		mcp.WithDescription(
			"Show the latest pipeline activity: deals created, stage moves, deletions and logged interactions. "+
				"Useful for a weekly review or to pick up where you left off.",
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Max entries (default: %d, max: %d)", activity.DefaultLimit, activity.MaxLimit)),
		),
	)
}

// Handle processes the activity_recent tool call.
func (t *ActivityRecentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := t.journal.Recent(ctx, intArg(req, "limit", activity.DefaultLimit))
	if err != nil {
		return nil, fmt.Errorf("loading activity: %w", err)
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No activity recorded yet."), nil
	}

	var b strings.Builder
	b.WriteString("# Recent Activity\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s %s **%s**", e.CreatedAt.Format("2006-01-02 15:04"), e.Icon, e.Title)
		if e.Description != "" {
			fmt.Fprintf(&b, " - %s", e.Description)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}
