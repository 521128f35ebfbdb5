// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources that depend on
// abstractions. No business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"

	"github.com/HendryAvila/dealcoach/internal/activity"
	"github.com/HendryAvila/dealcoach/internal/config"
	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/prompts"
	"github.com/HendryAvila/dealcoach/internal/resources"
	"github.com/HendryAvila/dealcoach/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags.
var Version = "dev"

// openStore and openJournal are package-level variables for testability.
var (
	openStore = func(cfg *config.Config) (*deals.SQLiteStore, error) {
		return deals.Open(cfg.DataDir, cfg.DBFile)
	}
	openJournal = func(store *deals.SQLiteStore) (*activity.Store, error) {
		return activity.New(store.DB())
	}
)

// New creates and configures the MCP server with all tools, prompts and
// resources registered.
//
// The returned cleanup function closes the deal store and must be called
// on shutdown (typically via defer). It is always non-nil.
func New(cfg *config.Config, logger *zap.Logger) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, noop, fmt.Errorf("opening deal store: %w", err)
	}
	logger.Info("deal store ready", zap.String("path", cfg.DBPath()))

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("deal store close", zap.Error(err))
		}
	}

	s := server.NewMCPServer(
		"dealcoach",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(loggingHooks(logger)),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register deal tools ---

	createTool := tools.NewDealCreateTool(store)
	s.AddTool(createTool.Definition(), createTool.Handle)

	updateTool := tools.NewDealUpdateTool(store)
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	getTool := tools.NewDealGetTool(store)
	s.AddTool(getTool.Definition(), getTool.Handle)

	listTool := tools.NewDealListTool(store, cfg.Pipeline.ListLimit)
	s.AddTool(listTool.Definition(), listTool.Handle)

	deleteTool := tools.NewDealDeleteTool(store)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	guidanceTool := tools.NewDealGuidanceTool(store)
	s.AddTool(guidanceTool.Definition(), guidanceTool.Handle)

	// --- Register pipeline and catalog tools ---

	statsTool := tools.NewPipelineStatsTool(store)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	nudgesTool := tools.NewPipelineNudgesTool(store)
	s.AddTool(nudgesTool.Definition(), nudgesTool.Handle)

	playbookTool := tools.NewPlaybookTool()
	s.AddTool(playbookTool.Definition(), playbookTool.Handle)

	// --- Register journal tools ---
	//
	// The journal is an independent subsystem: if its tables cannot be
	// migrated, deal tools keep working without it and the journal tools
	// are simply not registered.

	journal, err := openJournal(store)
	if err != nil {
		logger.Warn("activity journal disabled", zap.Error(err))
	} else {
		registerJournalTools(s, store, journal)

		bridge := tools.NewActivityBridge(journal, logger)
		createTool.SetObserver(bridge)
		updateTool.SetObserver(bridge)
		deleteTool.SetObserver(bridge)
		nudgesTool.SetJournal(journal)
	}

	// --- Register prompts ---

	reviewPrompt := prompts.NewDealReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	pipelinePrompt := prompts.NewPipelineReviewPrompt()
	s.AddPrompt(pipelinePrompt.Definition(), pipelinePrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.MeddpiccResource(), resourceHandler.HandleMeddpicc)
	s.AddResource(resourceHandler.StagesResource(), resourceHandler.HandleStages)
	s.AddResourceTemplate(resourceHandler.DealGuidanceTemplate(), resourceHandler.HandleDealGuidance)

	return s, cleanup, nil
}

// noop is the cleanup returned when the store never opened.
func noop() {}

func registerJournalTools(s *server.MCPServer, store deals.Store, journal *activity.Store) {
	logTool := tools.NewInteractionLogTool(store, journal)
	s.AddTool(logTool.Definition(), logTool.Handle)

	timelineTool := tools.NewDealTimelineTool(store, journal)
	s.AddTool(timelineTool.Definition(), timelineTool.Handle)

	searchTool := tools.NewInteractionSearchTool(journal)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	recentTool := tools.NewActivityRecentTool(journal)
	s.AddTool(recentTool.Definition(), recentTool.Handle)
}

func loggingHooks(logger *zap.Logger) *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(func(_ context.Context, id any, req *mcp.CallToolRequest) {
		logger.Debug("tool call", zap.Any("id", id), zap.String("tool", req.Params.Name))
	})
	hooks.AddOnError(func(_ context.Context, id any, method mcp.MCPMethod, _ any, err error) {
		logger.Warn("request failed", zap.Any("id", id), zap.String("method", string(method)), zap.Error(err))
	})
	return hooks
}

// serverInstructions returns the system instructions that tell the AI
// how to use dealcoach effectively.
func serverInstructions() string {
	return `You have access to dealcoach, a MEDDPICC sales coaching MCP server.

## WHEN TO USE dealcoach

Use dealcoach whenever the user talks about a sales opportunity, a customer
meeting, a proposal or their pipeline.

- New opportunity mentioned: create it with ` + "`deal_create`" + `.
- Meeting notes or new facts about a deal: record them with ` + "`deal_update`" + `
  (MEDDPICC fields, next action, stage).
- "What should I do on this deal?": run ` + "`deal_guidance`" + `.
- Start of a working session: run ` + "`pipeline_nudges`" + `.
- After any call, meeting or email: log it with ` + "`deal_log_interaction`" + `.
  Before the next one, read ` + "`deal_timeline`" + `.

## RULES

1. Never invent MEDDPICC facts. Only record what the user told you.
2. Respect the stage-health verdict. If dealcoach says a deal is not
   supported by its data, tell the user before helping them advance it.
3. Always end a deal conversation with exactly one next action and a date.
4. Quote the discovery questions from ` + "`meddpicc_playbook`" + ` rather than
   making up your own.`
}
