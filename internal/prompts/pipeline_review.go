package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// PipelineReviewPrompt handles the pipeline-review MCP prompt.
// It instructs the AI to present the day's pipeline and what needs attention.
type PipelineReviewPrompt struct{}

// NewPipelineReviewPrompt creates a PipelineReviewPrompt.
func NewPipelineReviewPrompt() *PipelineReviewPrompt {
	return &PipelineReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *PipelineReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("pipeline-review",
		mcp.WithPromptDescription(
			"Start-of-day pipeline check. Shows funnel value by stage, "+
				"overdue actions, stalled deals and deals in the wrong stage.",
		),
	)
}

// Handle processes the pipeline-review prompt request.
func (p *PipelineReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Pipeline Review",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `pipeline_stats` and `pipeline_nudges`.\n\n" +
						"Then:\n" +
						"1. Show me the funnel in a clear, visual format\n" +
						"2. List the nudges, most severe first, grouped by deal\n" +
						"3. Pick the three deals where an hour of work today moves the most value\n" +
						"4. For each, tell me exactly what to do next\n" +
						"5. If `activity_recent` is available, close with what moved since last week",
				),
			},
		},
	}, nil
}
