package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/navpatch/internal/ledger"
	"github.com/ziadkadry99/navpatch/internal/navpatch"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes navigation tools to agents.
type Server struct {
	patcher *navpatch.Patcher
	siteDir string
	ledger  *ledger.Store
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server. store may be nil, in which case the
// recent_runs tool is not registered.
func NewServer(patcher *navpatch.Patcher, siteDir string, store *ledger.Store) *Server {
	s := &Server{
		patcher: patcher,
		siteDir: siteDir,
		ledger:  store,
	}

	s.mcp = server.NewMCPServer(
		"navpatch",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(resolveDestinationTool, s.handleResolveDestination)
	s.mcp.AddTool(planPageTool, s.handlePlanPage)
	s.mcp.AddTool(listRoutesTool, s.handleListRoutes)
	if s.ledger != nil {
		s.mcp.AddTool(recentRunsTool, s.handleRecentRuns)
	}
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
