package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/dealcoach/internal/activity"
	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/guidance"
	"github.com/mark3labs/mcp-go/mcp"
)

// InteractionLogTool handles the deal_log_interaction MCP tool.
type InteractionLogTool struct {
	store   deals.Store
	journal *activity.Store
}

// NewInteractionLogTool creates an InteractionLogTool.
func NewInteractionLogTool(store deals.Store, journal *activity.Store) *InteractionLogTool {
	return &InteractionLogTool{store: store, journal: journal}
}

func interactionTypeNames() []string {
	types := activity.InteractionTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

// Definition returns the MCP tool definition for registration.
func (t *InteractionLogTool) Definition() mcp.Tool {
	return mcp.NewTool("deal_log_interaction",
		mcp.WithDescription(
			"Log a touchpoint on a deal: a call, meeting, email, note, LinkedIn message or conference chat. "+
				"Logging counts as activity, so it resets the deal's days-since-update. "+
				"Record new MEDDPICC facts from the conversation with `deal_update` as well.",
		),
		mcp.WithString("deal_id",
			mcp.Required(),
			mcp.Description("ID of the deal the interaction belongs to"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("One-line summary of what happened"),
		),
		mcp.WithString("type",
			mcp.Description("Kind of touchpoint (default: note)"),
			mcp.Enum(interactionTypeNames()...),
		),
		mcp.WithString("details",
			mcp.Description("Longer notes: who attended, what was said, objections raised"),
		),
		mcp.WithString("occurred_at",
			mcp.Description("When it happened, YYYY-MM-DD or RFC 3339 (default: now)"),
		),
	)
}

// Handle processes the deal_log_interaction tool call.
func (t *InteractionLogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("deal_id", "")
	if id == "" {
		return mcp.NewToolResultError("'deal_id' is required"), nil
	}
	summary := strings.TrimSpace(req.GetString("summary", ""))
	if summary == "" {
		return mcp.NewToolResultError("'summary' is required"), nil
	}
	typ, err := activity.ParseInteractionType(req.GetString("type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	occurred, err := deals.ParseTimestamp(req.GetString("occurred_at", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("occurred_at: %v", err)), nil
	}

	in := &activity.Interaction{
		DealID:     id,
		Type:       typ,
		Summary:    summary,
		Details:    req.GetString("details", ""),
		OccurredAt: occurred,
		CreatedAt:  timeNow().UTC(),
	}
	err = t.journal.LogInteraction(ctx, in)
	if errors.Is(err, deals.ErrNotFound) {
		return notFound(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("logging interaction on %s: %w", id, err)
	}

	d, err := t.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading deal %s: %w", id, err)
	}
	r := guidance.Evaluate(*d, timeNow())

	response := fmt.Sprintf(
		"Interaction #%d logged on %q\n"+
			"Type: %s\n"+
			"When: %s\n"+
			"Days since update: %d\n"+
			"Next best action: %s",
		in.ID, d.Label(), in.Type, in.OccurredAt.Format(deals.DateLayout),
		r.DaysSinceUpdate, formatAction(r.NextBestAction),
	)
	return mcp.NewToolResultText(response), nil
}
