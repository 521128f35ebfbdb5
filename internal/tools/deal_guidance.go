package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/guidance"
	"github.com/HendryAvila/dealcoach/internal/meddpicc"
	"github.com/HendryAvila/dealcoach/internal/render"
	"github.com/HendryAvila/dealcoach/internal/stages"
	"github.com/mark3labs/mcp-go/mcp"
)

// DealGuidanceTool handles the deal_guidance MCP tool. It evaluates a
// stored deal, or an unsaved deal described inline.
type DealGuidanceTool struct {
	store deals.Store
}

// NewDealGuidanceTool creates a DealGuidanceTool with the given deal store.
func NewDealGuidanceTool(store deals.Store) *DealGuidanceTool {
	return &DealGuidanceTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *DealGuidanceTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Coach a deal: MEDDPICC completeness, stage-gated warnings, a stage-health check " +
				"(is the deal really in the stage it claims?) and the single next-best action. " +
				"Pass `deal_id` for a stored deal, or describe a deal inline with `stage`, " +
				"`updated_at`, `next_action` and the MEDDPICC fields.",
		),
		mcp.WithString("deal_id",
			mcp.Description("ID of a stored deal. When set, inline attributes are ignored."),
		),
		mcp.WithString("stage",
			mcp.Description("Inline deal stage. Unknown values are read as outreach."),
		),
		mcp.WithString("updated_at",
			mcp.Description("Inline last-update time (RFC 3339 or YYYY-MM-DD). Omit for a never-updated deal."),
		),
		mcp.WithString("next_action",
			mcp.Description("Inline next action"),
		),
		mcp.WithString("format",
			mcp.Description("Output format (default: markdown)"),
			mcp.Enum("markdown", "json"),
		),
	}
	for _, f := range meddpicc.Fields() {
		opts = append(opts, mcp.WithString(string(f.ID),
			mcp.Description(fmt.Sprintf("Inline MEDDPICC %s", f.Label)),
		))
	}
	return mcp.NewTool("deal_guidance", opts...)
}

type guidanceResponse struct {
	Deal     *deals.Deal     `json:"deal"`
	Guidance guidance.Result `json:"guidance"`
}

// Handle processes the deal_guidance tool call.
func (t *DealGuidanceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format := req.GetString("format", "markdown")
	if format != "markdown" && format != "json" {
		return mcp.NewToolResultError(fmt.Sprintf("invalid format %q: must be markdown or json", format)), nil
	}

	var d *deals.Deal
	if id := req.GetString("deal_id", ""); id != "" {
		stored, err := t.store.Get(ctx, id)
		if errors.Is(err, deals.ErrNotFound) {
			return notFound(id), nil
		}
		if err != nil {
			return nil, fmt.Errorf("loading deal %s: %w", id, err)
		}
		d = stored
	} else {
		inline, err := inlineDeal(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		d = inline
	}

	r := guidance.Evaluate(*d, timeNow())
	if format == "json" {
		return jsonResult(guidanceResponse{Deal: d, Guidance: r})
	}
	return mcp.NewToolResultText(render.Markdown(d, r)), nil
}

// inlineDeal builds an unsaved deal from the request. The stage is kept
// as given; the evaluator reads unknown stages as outreach.
func inlineDeal(req mcp.CallToolRequest) (*deals.Deal, error) {
	updated, err := deals.ParseTimestamp(req.GetString("updated_at", ""))
	if err != nil {
		return nil, err
	}
	d := &deals.Deal{
		Stage:      stages.Stage(req.GetString("stage", "")),
		NextAction: req.GetString("next_action", ""),
		UpdatedAt:  updated,
	}
	for _, id := range meddpicc.IDs() {
		d.SetField(id, req.GetString(string(id), ""))
	}
	return d, nil
}
