package mcp

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fginsight/fginsight/internal/analyzer"
	"github.com/fginsight/fginsight/internal/model"
	"github.com/fginsight/fginsight/internal/snapshot"
)

// MCPServer wraps the mcp-go server with project analysis tool and resource
// registrations. It lets AI agents open project archives, explore their
// tables, pages, workflows, and server commands, and run the static
// reviewer, without the agent having to parse archive internals itself.
type MCPServer struct {
	analyzer *analyzer.Analyzer
	store    *snapshot.Store
	logger   *slog.Logger
	server   *server.MCPServer

	mu      sync.Mutex
	results map[string]*model.Result
}

// NewMCPServer creates an MCPServer pre-loaded with all analysis tools and
// resources. store may be nil; the snapshots resource is only registered
// when a store is available. The returned server is ready to serve over
// stdio.
func NewMCPServer(a *analyzer.Analyzer, store *snapshot.Store, logger *slog.Logger) *MCPServer {
	s := &MCPServer{
		analyzer: a,
		store:    store,
		logger:   logger,
		results:  make(map[string]*model.Result),
	}

	mcpServer := server.NewMCPServer(
		"FGinsight Project Analyzer",
		"0.1.0",
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)

	// Register tools (analyze, describe, review)
	s.registerTools(mcpServer)

	// Register resources (snapshot list, pseudocode templates)
	s.registerResources(mcpServer)

	s.server = mcpServer
	return s
}

// Server returns the underlying mcp-go MCPServer instance. Useful for
// advanced configuration or testing.
func (s *MCPServer) Server() *server.MCPServer {
	return s.server
}

// ServeStdio starts the MCP server in stdio mode. This is the integration
// path for Claude Code, Claude Desktop, and other MCP clients that launch
// the server as a subprocess.
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server in stdio mode")
	return server.ServeStdio(s.server)
}

// loadResult analyzes the archive at path. Archives are analyzed once per
// server lifetime and served from cache on repeated tool calls; the cache
// key is the cleaned path.
func (s *MCPServer) loadResult(ctx context.Context, path string) (*model.Result, error) {
	key := filepath.Clean(path)

	s.mu.Lock()
	cached, ok := s.results[key]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	result, err := s.analyzer.Analyze(ctx, path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.results[key] = result
	s.mu.Unlock()
	return result, nil
}

// readOnlyAnnotation returns the standard ToolAnnotation for tools that
// never mutate anything. Every tool here qualifies; analysis is read-only.
func readOnlyAnnotation() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		ReadOnlyHint: boolPtr(true),
	}
}

func boolPtr(b bool) *bool {
	return &b
}
