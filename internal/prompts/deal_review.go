// Package prompts implements MCP prompt handlers for deal coaching.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// DealReviewPrompt handles the deal-review MCP prompt.
// It walks one deal through a MEDDPICC review with the seller.
type DealReviewPrompt struct{}

// NewDealReviewPrompt creates a DealReviewPrompt.
func NewDealReviewPrompt() *DealReviewPrompt {
	return &DealReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *DealReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("deal-review",
		mcp.WithPromptDescription(
			"Review one deal like a sales coach: check MEDDPICC gaps, challenge the stage, "+
				"and leave with a single concrete next step.",
		),
		mcp.WithArgument("deal_id",
			mcp.ArgumentDescription("ID of the deal to review. Omit to pick from the pipeline."),
		),
	)
}

// Handle processes the deal-review prompt request.
func (p *DealReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	dealID := ""
	if args := req.Params.Arguments; args != nil {
		dealID = args["deal_id"]
	}

	opening := "Please run `deal_list` with `open_only: true` and ask me which deal to review.\n\n" +
		"Once I pick one, run `deal_guidance` for it."
	if dealID != "" {
		opening = fmt.Sprintf("Please run `deal_guidance` with `deal_id: %q`, "+
			"and `deal_timeline` for the same deal if it is available.", dealID)
	}

	return &mcp.GetPromptResult{
		Description: "Deal Review",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					opening + "\n\n" +
						"Then coach me through it:\n" +
						"1. If there is a stage-health verdict, start there: ask whether the deal really belongs in its stage\n" +
						"2. Go through the warnings from most to least severe. For each missing MEDDPICC field, " +
						"ask me the discovery question from `meddpicc_playbook` and record my answer with `deal_update`\n" +
						"3. Do not invent MEDDPICC facts. If I don't know an answer, turn it into a next action\n" +
						"4. If I describe a conversation that is not in the timeline, log it with `deal_log_interaction`\n" +
						"5. Finish by agreeing one next action with a date and save it with `deal_update`",
				),
			},
		},
	}, nil
}
