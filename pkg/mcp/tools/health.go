package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/grocerydesk/grocery-console/pkg/reports"
)

type healthResult struct {
	Status      string   `json:"status"`
	Service     string   `json:"service"`
	Version     string   `json:"version"`
	ReportTypes []string `json:"report_types"`
}

// RegisterHealthTool adds a health tool that reports the server version and
// the report types it can generate. It does not touch the database.
func RegisterHealthTool(s *server.MCPServer, version string) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server status, version and supported report types"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		health := healthResult{Status: "ok", Service: "grocery-console", Version: version}
		for _, t := range reports.All() {
			health.ReportTypes = append(health.ReportTypes, string(t))
		}

		result, err := json.Marshal(health)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal health result: %w", err)
		}
		return mcp.NewToolResultText(string(result)), nil
	})
}
