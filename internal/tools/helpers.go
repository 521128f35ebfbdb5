// Package tools implements the MCP tool handlers for deal coaching.
//
// Each tool is a struct holding its dependencies (deals.Store) injected
// via its constructor, with Definition() returning the mcp.Tool schema and
// Handle() processing a call.
//
// Handlers report caller mistakes (bad arguments, unknown ids) as tool
// errors via mcp.NewToolResultError and return Go errors only for
// infrastructure failures.
package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/meddpicc"
	"github.com/HendryAvila/dealcoach/internal/stages"
	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// hasArg reports whether the caller sent key at all.
func hasArg(req mcp.CallToolRequest, key string) bool {
	_, ok := req.GetArguments()[key]
	return ok
}

func stageNames() []string {
	names := make([]string, 0, len(stages.Order)+1)
	for _, s := range stages.Order {
		names = append(names, string(s))
	}
	return append(names, string(stages.StageLost))
}

func engagementNames() []string {
	return []string{
		string(deals.EngagementAdvisor),
		string(deals.EngagementActivator),
		string(deals.EngagementAssessment),
		string(deals.EngagementSDK),
	}
}

// dealOptions declares the editable deal attributes shared by
// deal_create and deal_update.
func dealOptions() []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithString("organization",
			mcp.Description("Customer organization name"),
		),
		mcp.WithString("stage",
			mcp.Description("Funnel stage"),
			mcp.Enum(stageNames()...),
		),
		mcp.WithNumber("deal_value",
			mcp.Description("Deal value in whole currency units (>= 0)"),
		),
		mcp.WithString("engagement_type",
			mcp.Description("Commercial shape of the deal (default: advisor)"),
			mcp.Enum(engagementNames()...),
		),
		mcp.WithString("next_action",
			mcp.Description("The next concrete step, e.g. 'Send proposal to CFO'"),
		),
		mcp.WithString("next_action_date",
			mcp.Description("Due date of the next action (YYYY-MM-DD). Empty string clears it."),
		),
		mcp.WithString("notes",
			mcp.Description("Free-form notes"),
		),
	}
	for _, f := range meddpicc.Fields() {
		opts = append(opts, mcp.WithString(string(f.ID),
			mcp.Description(fmt.Sprintf("MEDDPICC %s: %s", f.Label, f.Question)),
		))
	}
	return opts
}

// patchFromArgs reads every deal attribute present in req. Errors are
// meant for the caller.
func patchFromArgs(req mcp.CallToolRequest) (deals.Patch, error) {
	var p deals.Patch

	if hasArg(req, "organization") {
		v := strings.TrimSpace(req.GetString("organization", ""))
		p.Organization = &v
	}
	if hasArg(req, "stage") {
		s, err := stages.Parse(req.GetString("stage", ""))
		if err != nil {
			return p, err
		}
		p.Stage = &s
	}
	if hasArg(req, "deal_value") {
		raw, ok := req.GetArguments()["deal_value"].(float64)
		if !ok || raw < 0 || raw != math.Trunc(raw) {
			return p, fmt.Errorf("'deal_value' must be a non-negative whole number")
		}
		v := int64(raw)
		p.DealValue = &v
	}
	if hasArg(req, "engagement_type") {
		e := deals.EngagementType(strings.ToLower(strings.TrimSpace(req.GetString("engagement_type", ""))))
		if err := deals.ValidateEngagement(e); err != nil {
			return p, err
		}
		p.EngagementType = &e
	}
	if hasArg(req, "next_action") {
		v := req.GetString("next_action", "")
		p.NextAction = &v
	}
	if hasArg(req, "next_action_date") {
		t, err := deals.ParseDate(req.GetString("next_action_date", ""))
		if err != nil {
			return p, err
		}
		p.NextActionDate = &t
	}
	if hasArg(req, "notes") {
		v := req.GetString("notes", "")
		p.Notes = &v
	}
	for _, id := range meddpicc.IDs() {
		if !hasArg(req, string(id)) {
			continue
		}
		if p.Fields == nil {
			p.Fields = make(map[meddpicc.FieldID]string)
		}
		p.Fields[id] = req.GetString(string(id), "")
	}
	return p, nil
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func notFound(id string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Deal %q not found. Use `deal_list` to see existing deals.", id))
}
