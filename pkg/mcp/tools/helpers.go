package tools

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/screening"
)

// trimString removes leading and trailing whitespace from a string.
func trimString(s string) string {
	return strings.TrimSpace(s)
}

// getOptionalString returns the trimmed string argument, or "" when it is
// absent or not a string.
func getOptionalString(req mcp.CallToolRequest, key string) string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return ""
	}
	val, ok := args[key].(string)
	if !ok {
		return ""
	}
	return trimString(val)
}

// screenArguments rejects string arguments that look like SQL injection or
// script payloads. Returns nil when every argument is clean.
func screenArguments(args map[string]string, logger *zap.Logger) *mcp.CallToolResult {
	findings := screening.CheckAll(args)
	if len(findings) == 0 {
		return nil
	}

	fields := make([]string, 0, len(findings))
	for _, f := range findings {
		fields = append(fields, f.Field)
		if logger != nil {
			logger.Warn("Rejected suspicious tool argument",
				zap.String("param", f.Field),
				zap.String("kind", string(f.Kind)),
				zap.String("fingerprint", f.Fingerprint))
		}
	}
	return NewErrorResultWithDetails("rejected_input",
		"one or more arguments contain disallowed content",
		map[string]any{"params": fields})
}
