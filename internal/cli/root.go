// Package cli implements the dealcoach command line.
//
// Commands are built by constructor functions so tests can run them with
// captured output instead of the process's stdio.
package cli

import (
	"fmt"
	"io"

	"github.com/HendryAvila/dealcoach/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	verbose    bool
	configPath string
}

// NewRootCommand builds the dealcoach command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "dealcoach",
		Short: "MEDDPICC deal coaching for sellers and their AI assistants",
		Long: `dealcoach scores deals against MEDDPICC, checks that each deal's stage is
backed by its qualification data and picks the single next-best action.

Run "dealcoach serve" to expose it to an AI assistant over MCP (stdio),
or "dealcoach evaluate deal.yaml" to coach one deal from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: <user config dir>/dealcoach/config.yaml)")

	root.AddCommand(
		newServeCommand(opts),
		newEvaluateCommand(),
		newVersionCommand(),
	)
	return root
}

// loadConfig resolves configuration from --config or the default sources.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	if o.configPath != "" {
		return loader.LoadFromFile(o.configPath)
	}
	return loader.Load()
}

// newLogger builds a production zap logger writing to errOut. --verbose
// wins over the configured level.
func newLogger(level string, verbose bool, errOut io.Writer) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if verbose {
		lvl = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(errOut),
		lvl,
	)
	return zap.New(core), nil
}
