package cli

import (
	"fmt"

	dcserver "github.com/HendryAvila/dealcoach/internal/server"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dealcoach version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dealcoach v%s\n", dcserver.Version)
		},
	}
}
