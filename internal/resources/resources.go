// Package resources implements MCP resource handlers for deal coaching.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (dealcoach://...) following MCP conventions.
package resources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/guidance"
	"github.com/HendryAvila/dealcoach/internal/meddpicc"
	"github.com/HendryAvila/dealcoach/internal/stages"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	MeddpiccURI    = "dealcoach://catalog/meddpicc"
	StagesURI      = "dealcoach://catalog/stages"
	dealURIPrefix  = "dealcoach://deals/"
	dealURISuffix  = "/guidance"
	dealURIPattern = dealURIPrefix + "{id}" + dealURISuffix
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Handler manages dealcoach resource endpoints.
type Handler struct {
	store deals.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store deals.Store) *Handler {
	return &Handler{store: store}
}

// MeddpiccResource returns the MCP resource definition for the field catalog.
func (h *Handler) MeddpiccResource() mcp.Resource {
	return mcp.NewResource(
		MeddpiccURI,
		"MEDDPICC Field Catalog",
		mcp.WithResourceDescription("The eight MEDDPICC fields with discovery questions, examples and coaching"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleMeddpicc returns the field catalog as JSON.
func (h *Handler) HandleMeddpicc(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, meddpicc.Fields())
}

// StagesResource returns the MCP resource definition for the stage playbook.
func (h *Handler) StagesResource() mcp.Resource {
	return mcp.NewResource(
		StagesURI,
		"Deal Stage Playbook",
		mcp.WithResourceDescription("The ordered sales stages with objectives, actions and exit criteria"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStages returns the stage playbook as JSON.
func (h *Handler) HandleStages(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, stages.Definitions())
}

// DealGuidanceTemplate returns the resource template for one deal's guidance.
func (h *Handler) DealGuidanceTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		dealURIPattern,
		"Deal Guidance",
		mcp.WithTemplateDescription("Current coaching for a stored deal: score, warnings, stage health and next-best action"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleDealGuidance evaluates the deal named in the URI.
func (h *Handler) HandleDealGuidance(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id, ok := dealIDFromURI(uri)
	if !ok {
		return errorResource(uri, fmt.Sprintf("expected %s", dealURIPattern)), nil
	}

	d, err := h.store.Get(ctx, id)
	if errors.Is(err, deals.ErrNotFound) {
		return errorResource(uri, fmt.Sprintf("deal %q not found", id)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading deal %s: %w", id, err)
	}

	return jsonContents(uri, guidance.Evaluate(*d, timeNow()))
}

func dealIDFromURI(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, dealURIPrefix)
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, dealURISuffix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
