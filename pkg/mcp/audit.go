package mcp

import (
	"context"
	"sync"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/logging"
)

// maxLoggedValue is the longest argument value written to the log.
const maxLoggedValue = 200

// ToolCallLogger logs every MCP tool call with its duration and outcome.
type ToolCallLogger struct {
	logger *zap.Logger

	// startTimes tracks when tool calls begin, keyed by request ID.
	startTimes sync.Map
}

// NewToolCallLogger creates a ToolCallLogger.
func NewToolCallLogger(logger *zap.Logger) *ToolCallLogger {
	return &ToolCallLogger{logger: logger.Named("calls")}
}

// Hooks returns mcp-go Hooks configured to capture tool call events.
func (a *ToolCallLogger) Hooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(a.beforeCallTool)
	hooks.AddAfterCallTool(a.afterCallTool)
	hooks.AddOnError(a.onError)
	return hooks
}

func (a *ToolCallLogger) beforeCallTool(_ context.Context, id any, _ *mcplib.CallToolRequest) {
	a.startTimes.Store(id, time.Now())
}

func (a *ToolCallLogger) afterCallTool(_ context.Context, id any, req *mcplib.CallToolRequest, result *mcplib.CallToolResult) {
	fields := []zap.Field{
		zap.String("tool", req.Params.Name),
		zap.Any("arguments", sanitizeArguments(req.Params.Arguments)),
		zap.Duration("duration", a.elapsed(id)),
	}

	if result != nil && result.IsError {
		a.logger.Warn("Tool call returned error result", append(fields, zap.String("summary", summarizeResult(result)))...)
		return
	}
	a.logger.Info("Tool call completed", fields...)
}

func (a *ToolCallLogger) onError(_ context.Context, id any, method mcplib.MCPMethod, message any, err error) {
	if method != mcplib.MethodToolsCall {
		return
	}

	tool := ""
	if req, ok := message.(*mcplib.CallToolRequest); ok {
		tool = req.Params.Name
	}

	a.logger.Error("Tool call failed",
		zap.String("tool", tool),
		zap.Duration("duration", a.elapsed(id)),
		zap.String("error", logging.SanitizeError(err)))
}

func (a *ToolCallLogger) elapsed(id any) time.Duration {
	if v, ok := a.startTimes.LoadAndDelete(id); ok {
		return time.Since(v.(time.Time))
	}
	return 0
}

// sanitizeArguments truncates long string values before logging.
func sanitizeArguments(args any) map[string]any {
	params, ok := args.(map[string]any)
	if !ok || len(params) == 0 {
		return nil
	}

	sanitized := make(map[string]any, len(params))
	for k, v := range params {
		if s, ok := v.(string); ok {
			sanitized[k] = logging.TruncateString(s, maxLoggedValue)
			continue
		}
		sanitized[k] = v
	}
	return sanitized
}

// summarizeResult returns the first text content of a result, truncated.
func summarizeResult(result *mcplib.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcplib.TextContent); ok {
			return logging.TruncateString(text.Text, maxLoggedValue)
		}
	}
	return ""
}
