package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/navpatch/internal/navpatch"
	"github.com/ziadkadry99/navpatch/internal/walker"
)

// handleResolveDestination returns the destination of one label.
func (s *Server) handleResolveDestination(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label, err := request.RequireString("label")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: label"), nil
	}

	table := s.patcher.Table()
	if table == nil {
		return mcp.NewToolResultError("no redirect table is configured"), nil
	}
	dest, ok := table.Lookup(label)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No destination for %q. Known labels: %s.",
			label, strings.Join(table.Labels(), ", "),
		)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s -> %s (mode %s)", label, dest, table.Mode())), nil
}

type pagePlan struct {
	Path        string                `json:"path"`
	Assignments []navpatch.Assignment `json:"assignments"`
	Pending     int                   `json:"pending"`
}

// handlePlanPage reports the assignments for a built page.
func (s *Server) handlePlanPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}

	file, err := walker.ResolvePage(s.siteDir, path)
	if err != nil {
		if errors.Is(err, walker.ErrPageNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"No page found at %q. Build the site with `mkdocs build` first.", path,
			)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to resolve page: %v", err)), nil
	}

	f, err := os.Open(file)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read page: %v", err)), nil
	}
	defer f.Close()

	assignments, err := s.patcher.Plan(f)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to plan page: %v", err)), nil
	}
	plan := pagePlan{
		Path:        path,
		Assignments: assignments,
		Pending:     len(navpatch.Pending(assignments)),
	}
	return jsonResult(plan)
}

// handleListRoutes returns the redirect table.
func (s *Server) handleListRoutes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table := s.patcher.Table()
	if table == nil {
		return mcp.NewToolResultError("no redirect table is configured"), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mode: %s\n", table.Mode()))
	for _, e := range table.Entries() {
		sb.WriteString(fmt.Sprintf("- %s -> %s\n", e.Label, e.Destination))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleRecentRuns returns the latest ledger runs.
func (s *Server) handleRecentRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 10)
	runs, err := s.ledger.LatestRuns(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read ledger: %v", err)), nil
	}
	if len(runs) == 0 {
		return mcp.NewToolResultText("No runs recorded yet. Run `navpatch patch` first."), nil
	}
	return jsonResult(runs)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
