package tools

import (
	"context"
	"fmt"

	"github.com/HendryAvila/dealcoach/internal/activity"
	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/pipeline"
	"github.com/HendryAvila/dealcoach/internal/render"
	"github.com/mark3labs/mcp-go/mcp"
)

// PipelineStatsTool handles the pipeline_stats MCP tool.
type PipelineStatsTool struct {
	store deals.Store
}

// NewPipelineStatsTool creates a PipelineStatsTool with the given deal store.
func NewPipelineStatsTool(store deals.Store) *PipelineStatsTool {
	return &PipelineStatsTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *PipelineStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("pipeline_stats",
		mcp.WithDescription(
			"Summarize the funnel: deal count, value and average days in stage for each open stage, "+
				"plus won/lost counts and total value (lost deals excluded).",
		),
		mcp.WithString("format",
			mcp.Description("Output format (default: markdown)"),
			mcp.Enum("markdown", "json"),
		),
	)
}

// Handle processes the pipeline_stats tool call.
func (t *PipelineStatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all, err := t.store.List(ctx, deals.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing deals: %w", err)
	}

	st := pipeline.Summarize(all, timeNow())
	if req.GetString("format", "markdown") == "json" {
		return jsonResult(st)
	}
	return mcp.NewToolResultText(render.StatsMarkdown(st)), nil
}

// PipelineNudgesTool handles the pipeline_nudges MCP tool.
type PipelineNudgesTool struct {
	store   deals.Store
	journal *activity.Store
}

// NewPipelineNudgesTool creates a PipelineNudgesTool with the given deal store.
func NewPipelineNudgesTool(store deals.Store) *PipelineNudgesTool {
	return &PipelineNudgesTool{store: store}
}

// SetJournal enables the untouched-outreach check. Optional: without a
// journal the tool skips it.
func (t *PipelineNudgesTool) SetJournal(j *activity.Store) {
	t.journal = j
}

// Definition returns the MCP tool definition for registration.
func (t *PipelineNudgesTool) Definition() mcp.Tool {
	return mcp.NewTool("pipeline_nudges",
		mcp.WithDescription(
			"List what needs attention across open deals: overdue next actions, deals stuck in a stage "+
				"for more than two weeks, outreach deals with no logged interaction, and deals whose stage "+
				"is not supported by their MEDDPICC data. "+
				"Call this at the start of a working session.",
		),
		mcp.WithString("format",
			mcp.Description("Output format (default: markdown)"),
			mcp.Enum("markdown", "json"),
		),
	)
}

// Handle processes the pipeline_nudges tool call.
func (t *PipelineNudgesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	open, err := t.store.List(ctx, deals.ListOptions{OpenOnly: true})
	if err != nil {
		return nil, fmt.Errorf("listing deals: %w", err)
	}

	var opts []pipeline.NudgeOption
	if t.journal != nil {
		counts, err := t.journal.InteractionCounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting interactions: %w", err)
		}
		opts = append(opts, pipeline.WithInteractionCounts(counts))
	}

	nudges := pipeline.Nudges(open, timeNow(), opts...)
	if req.GetString("format", "markdown") == "json" {
		return jsonResult(nudges)
	}
	return mcp.NewToolResultText(render.NudgesMarkdown(nudges)), nil
}
