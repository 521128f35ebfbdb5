// dealcoach: MEDDPICC deal coaching MCP server
//
// Scores deals against MEDDPICC, checks each deal's stage against its
// qualification data and picks the next-best action. Works with any MCP
// client over stdio, or from the terminal.
//
// Usage:
//
//	dealcoach serve               # Start MCP server (stdio transport)
//	dealcoach evaluate deal.yaml  # Coach one deal from a file
//	dealcoach version
package main

import (
	"fmt"
	"os"

	"github.com/HendryAvila/dealcoach/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
