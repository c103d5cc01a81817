package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const pseudocodePrefix = "fginsight://pseudocode/"

// registerResources adds MCP resource definitions to the server. Resources
// provide read-only data that LLM clients can load into their context.
func (s *MCPServer) registerResources(srv *server.MCPServer) {

	// -------------------------------------------------------------------
	// fginsight://snapshots: stored analysis snapshots
	// -------------------------------------------------------------------
	if s.store != nil {
		srv.AddResource(
			mcp.NewResource(
				"fginsight://snapshots",
				"Stored Analysis Snapshots",
				mcp.WithResourceDescription(
					"List of stored project analysis snapshots, newest first, "+
						"with their project names, summary counts, and timestamps.",
				),
				mcp.WithMIMEType("application/json"),
			),
			s.handleSnapshotsResource,
		)
	}

	// -------------------------------------------------------------------
	// fginsight://pseudocode/{archive}/{command}: command logic (template)
	// -------------------------------------------------------------------
	srv.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pseudocodePrefix+"{archive}/{command}",
			"Server Command Pseudocode",
			mcp.WithTemplateDescription(
				"Flattened pseudocode for one server command in a project "+
					"archive. The archive segment is the path to the .fgcp file "+
					"and the final segment is the command name.",
			),
			mcp.WithTemplateMIMEType("text/plain"),
		),
		s.handlePseudocodeResource,
	)
}

// handleSnapshotsResource returns a JSON list of stored snapshots.
func (s *MCPServer) handleSnapshotsResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	snaps, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	b, err := json.MarshalIndent(snaps, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshots: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "fginsight://snapshots",
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

// handlePseudocodeResource returns the flattened logic of one server
// command as plain text.
func (s *MCPServer) handlePseudocodeResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	uri := request.Params.URI
	archivePath, commandName, err := splitPseudocodeURI(uri)
	if err != nil {
		return nil, err
	}

	result, err := s.loadResult(ctx, archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %q: %w", archivePath, err)
	}

	for i := range result.Project.ServerCommands {
		cmd := &result.Project.ServerCommands[i]
		if cmd.Name != commandName {
			continue
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "text/plain",
				Text:     strings.Join(cmd.Flattened, "\n"),
			},
		}, nil
	}

	return nil, fmt.Errorf("server command %q not found in %q (available: %v)",
		commandName, result.Project.Name, commandNames(result.Project))
}

// splitPseudocodeURI extracts the archive path and command name from a
// pseudocode resource URI. The command is the final path segment; the
// archive path keeps any slashes of its own.
func splitPseudocodeURI(uri string) (archivePath, commandName string, err error) {
	rest := strings.TrimPrefix(uri, pseudocodePrefix)
	if rest == uri {
		return "", "", fmt.Errorf("invalid pseudocode URI %q: expected %s{archive}/{command}",
			uri, pseudocodePrefix)
	}
	idx := strings.LastIndex(rest, "/")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", fmt.Errorf("invalid pseudocode URI %q: expected %s{archive}/{command}",
			uri, pseudocodePrefix)
	}
	return rest[:idx], rest[idx+1:], nil
}
