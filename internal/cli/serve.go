package cli

import (
	"fmt"

	dcserver "github.com/HendryAvila/dealcoach/internal/server"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveStdio is a package-level variable for testability.
var serveStdio = func(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func newServeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdin/stdout. Logs go to stderr so they never
mix with the protocol stream.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.Log.Level, opts.verbose, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			s, cleanup, err := dcserver.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			logger.Info("serving MCP over stdio", zap.String("version", dcserver.Version))
			return serveStdio(s)
		},
	}
}
