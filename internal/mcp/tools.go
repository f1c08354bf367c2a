package mcp

import "github.com/mark3labs/mcp-go/mcp"

// resolveDestinationTool defines the resolve_destination MCP tool.
var resolveDestinationTool = mcp.NewTool("resolve_destination",
	mcp.WithDescription("Look up where a navigation tab or sidebar section with the given visible label should link to."),
	mcp.WithString("label",
		mcp.Required(),
		mcp.Description("Visible label, e.g. \"Getting Started\""),
	),
)

// planPageTool defines the plan_page MCP tool.
var planPageTool = mcp.NewTool("plan_page",
	mcp.WithDescription("Show which navigation elements of a built page would be rewritten, and which are still pending."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Site URL path of the page, e.g. /operations/"),
	),
)

// listRoutesTool defines the list_routes MCP tool.
var listRoutesTool = mcp.NewTool("list_routes",
	mcp.WithDescription("List every label in the redirect table with its destination."),
)

// recentRunsTool defines the recent_runs MCP tool.
var recentRunsTool = mcp.NewTool("recent_runs",
	mcp.WithDescription("List the most recent reconciliation passes recorded in the ledger."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of runs to return (default 10)"),
	),
)
