package cli

import (
	"github.com/spf13/cobra"

	"github.com/fginsight/fginsight/internal/analyzer"
	fmcp "github.com/fginsight/fginsight/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for AI agents",
		Long: `Start a Model Context Protocol (MCP) server that exposes project
analysis as tools for AI agents like Claude. The server communicates
over stdin/stdout using JSON-RPC, suitable for direct integration with
Claude Desktop or other MCP clients.

Tools cover analysis, table/page/command/workflow inspection, and the
review rules; the flattened pseudocode of server commands is published
as resources.`,
		Example: `  fginsight mcp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP()
		},
	}

	return cmd
}

func runMCP() error {
	// Stdout carries the JSON-RPC stream, so all logging goes to stderr.
	logger := newLogger()

	// The snapshot store only backs the snapshots resource; the tools
	// work without it.
	store, err := openSnapshotStore()
	if err != nil {
		logger.Warn("snapshot store unavailable", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	a := analyzer.New(analyzer.Options{
		Logger: logger,
		Limits: configuredLimits(),
	})

	mcpSrv := fmcp.NewMCPServer(a, store, logger)
	return mcpSrv.ServeStdio()
}
