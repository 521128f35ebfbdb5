package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/dealcoach/internal/meddpicc"
	"github.com/HendryAvila/dealcoach/internal/stages"
	"github.com/mark3labs/mcp-go/mcp"
)

// PlaybookTool handles the meddpicc_playbook MCP tool. It serves the
// static coaching catalogs.
type PlaybookTool struct{}

// NewPlaybookTool creates a PlaybookTool.
func NewPlaybookTool() *PlaybookTool {
	return &PlaybookTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *PlaybookTool) Definition() mcp.Tool {
	fieldIDs := make([]string, 0, meddpicc.Total)
	for _, id := range meddpicc.IDs() {
		fieldIDs = append(fieldIDs, string(id))
	}
	return mcp.NewTool("meddpicc_playbook",
		mcp.WithDescription(
			"Show coaching content: the stage playbook (objective, actions, exit criteria) "+
				"and/or the MEDDPICC field guide (question, examples, coaching). "+
				"With no arguments returns the whole funnel and all eight fields.",
		),
		mcp.WithString("stage",
			mcp.Description("Only this stage's playbook"),
			mcp.Enum(stageNames()[:len(stages.Order)]...),
		),
		mcp.WithString("field",
			mcp.Description("Only this MEDDPICC field"),
			mcp.Enum(fieldIDs...),
		),
	)
}

// Handle processes the meddpicc_playbook tool call.
func (t *PlaybookTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stageArg := req.GetString("stage", "")
	fieldArg := req.GetString("field", "")

	var defs []stages.Definition
	var fields []meddpicc.Field

	switch {
	case stageArg == "" && fieldArg == "":
		defs = stages.Definitions()
		fields = meddpicc.Fields()
	default:
		if stageArg != "" {
			s, err := stages.Parse(stageArg)
			if err != nil || s == stages.StageLost {
				return mcp.NewToolResultError(fmt.Sprintf("No playbook for stage %q.", stageArg)), nil
			}
			defs = []stages.Definition{stages.Lookup(s)}
		}
		if fieldArg != "" {
			f, ok := meddpicc.Lookup(meddpicc.FieldID(fieldArg))
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("Unknown MEDDPICC field %q.", fieldArg)), nil
			}
			fields = []meddpicc.Field{f}
		}
	}

	var sb strings.Builder
	if len(defs) > 0 {
		sb.WriteString("# Stage Playbook\n\n")
		for _, d := range defs {
			fmt.Fprintf(&sb, "## %s (`%s`)\n\n", d.Label, d.Stage)
			fmt.Fprintf(&sb, "**Objective:** %s\n\n", d.Objective)
			for _, a := range d.Actions {
				fmt.Fprintf(&sb, "- %s\n", a)
			}
			fmt.Fprintf(&sb, "\n**To advance:** %s\n\n", d.NextStageRequires)
		}
	}
	if len(fields) > 0 {
		sb.WriteString("# MEDDPICC Field Guide\n\n")
		for _, f := range fields {
			fmt.Fprintf(&sb, "## %s - %s (`%s`)\n\n", f.Letter, f.Label, f.ID)
			fmt.Fprintf(&sb, "**Ask:** %s\n\n", f.Question)
			fmt.Fprintf(&sb, "**Examples:** %s\n\n", f.Examples)
			fmt.Fprintf(&sb, "**Coaching:** %s\n\n", f.Coaching)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}
