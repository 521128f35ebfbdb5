package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/dealcoach/internal/activity"
	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/mark3labs/mcp-go/mcp"
)

// InteractionSearchTool handles the interaction_search MCP tool.
type InteractionSearchTool struct {
	journal *activity.Store
}

// NewInteractionSearchTool creates an InteractionSearchTool.
func NewInteractionSearchTool(journal *activity.Store) *InteractionSearchTool {
	return &InteractionSearchTool{journal: journal}
}

// Definition returns the MCP tool definition for registration.
func (t *InteractionSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("interaction_search",
		mcp.WithDescription(
			"Full-text search over logged interactions across all deals. Use it to find "+
				"who raised an objection, when pricing was discussed or which deals mentioned a competitor.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Keywords to look for in interaction summaries and details"),
		),
		mcp.WithString("deal_id",
			mcp.Description("Only search this deal"),
		),
		mcp.WithString("type",
			mcp.Description("Only search this kind of touchpoint"),
			mcp.Enum(interactionTypeNames()...),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Max results (default: %d, max: %d)", activity.DefaultLimit, activity.MaxLimit)),
		),
	)
}

// Handle processes the interaction_search tool call.
func (t *InteractionSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	opts := activity.SearchOptions{
		DealID: req.GetString("deal_id", ""),
		Limit:  intArg(req, "limit", activity.DefaultLimit),
	}
	if hasArg(req, "type") {
		typ, err := activity.ParseInteractionType(req.GetString("type", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		opts.Type = typ
	}

	results, err := t.journal.Search(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("searching interactions: %w", err)
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No interactions found matching your query."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d interactions:\n\n", len(results))
	for i, r := range results {
		label := (&deals.Deal{Organization: r.Organization}).Label()
		fmt.Fprintf(&b, "[%d] #%d (%s) %s - %s\n", i+1, r.ID, r.Type, label, r.Summary)
		if r.Details != "" {
			fmt.Fprintf(&b, "    %s\n", activity.Truncate(flatten(r.Details), 300))
		}
		fmt.Fprintf(&b, "    deal: `%s` | %s\n\n", r.DealID, r.OccurredAt.Format(deals.DateLayout))
	}
	return mcp.NewToolResultText(b.String()), nil
}
