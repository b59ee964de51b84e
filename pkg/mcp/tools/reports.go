package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/reports"
	"github.com/grocerydesk/grocery-console/pkg/services"
)

// ReportToolDeps contains dependencies for the report tools.
type ReportToolDeps struct {
	Reports services.ReportService
	Logger  *zap.Logger
}

// RegisterReportTools adds list_report_types, generate_report and
// generate_graph to the MCP server.
func RegisterReportTools(s *server.MCPServer, deps *ReportToolDeps) {
	registerListReportTypesTool(s, deps)
	registerGenerateReportTool(s, deps)
	registerGenerateGraphTool(s, deps)
}

func validTypes() []string {
	types := reports.All()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

func registerListReportTypesTool(s *server.MCPServer, deps *ReportToolDeps) {
	tool := mcp.NewTool(
		"list_report_types",
		mcp.WithDescription("Lists the report types with their CSV columns. Every report type can also be charted."),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(map[string]any{"report_types": deps.Reports.ReportTypes()})
	})
}

func registerGenerateReportTool(s *server.MCPServer, deps *ReportToolDeps) {
	tool := mcp.NewTool(
		"generate_report",
		mcp.WithDescription("Runs a sales report against the store database and writes it as CSV. "+
			"Returns the CSV path, header and row count."),
		mcp.WithString("report_type",
			mcp.Required(),
			mcp.Description("One of: earnings, spending, product_performance, least_selling"),
		),
		mcp.WithString("time_period",
			mcp.Required(),
			mcp.Description("Free-text label used in the output file name, e.g. 2024-Q1"),
		),
		mcp.WithString("output_path",
			mcp.Description("Optional CSV path. Defaults to {csv_dir}/{report_type}_{time_period}.csv"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reportType, err := req.RequireString("report_type")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		period, err := req.RequireString("time_period")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		reportType, period = trimString(reportType), trimString(period)
		outputPath := getOptionalString(req, "output_path")

		if rejected := screenArguments(map[string]string{
			"report_type": reportType,
			"time_period": period,
		}, deps.Logger); rejected != nil {
			return rejected, nil
		}

		out, err := deps.Reports.GenerateReport(ctx, reportType, period, outputPath)
		if err != nil {
			return errorResult(err, map[string]any{"valid_types": validTypes()})
		}
		return jsonResult(out)
	})
}

func registerGenerateGraphTool(s *server.MCPServer, deps *ReportToolDeps) {
	tool := mcp.NewTool(
		"generate_graph",
		mcp.WithDescription("Renders a bar chart PNG from a previously generated report CSV. "+
			"Run generate_report first with the same graph_type and time_period, or pass csv_path."),
		mcp.WithString("graph_type",
			mcp.Required(),
			mcp.Description("One of: earnings, spending, product_performance, least_selling"),
		),
		mcp.WithString("time_period",
			mcp.Required(),
			mcp.Description("Label used to locate the CSV and name the PNG"),
		),
		mcp.WithString("csv_path",
			mcp.Description("Optional CSV to chart. Defaults to {csv_dir}/{graph_type}_{time_period}.csv"),
		),
		mcp.WithString("output_path",
			mcp.Description("Optional PNG path. Defaults to {graph_dir}/{graph_type}_{time_period}.png"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		graphType, err := req.RequireString("graph_type")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		period, err := req.RequireString("time_period")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		graphType, period = trimString(graphType), trimString(period)
		csvPath := getOptionalString(req, "csv_path")
		outputPath := getOptionalString(req, "output_path")

		if rejected := screenArguments(map[string]string{
			"graph_type":  graphType,
			"time_period": period,
		}, deps.Logger); rejected != nil {
			return rejected, nil
		}

		out, err := deps.Reports.GenerateGraph(ctx, graphType, period, csvPath, outputPath)
		if err != nil {
			return errorResult(err, map[string]any{"valid_types": validTypes()})
		}
		return jsonResult(out)
	})
}
