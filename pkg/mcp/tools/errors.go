package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
)

// ErrorResponse represents a structured error in tool results.
// It is returned as tool content with IsError set so the caller sees an
// actionable message instead of a protocol failure.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for errors the caller can fix (bad report type, missing CSV).
// System failures such as an unreachable database still return Go errors.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
//
//	return NewErrorResultWithDetails(
//	    "invalid_report_type",
//	    "unknown report type \"profit\"",
//	    map[string]any{"valid_types": []string{"earnings", "spending"}},
//	), nil
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// userErrorCodes maps errors a caller can act on to result codes.
var userErrorCodes = []struct {
	err  error
	code string
}{
	{apperrors.ErrInvalidReportType, "invalid_report_type"},
	{apperrors.ErrInvalidGraphType, "invalid_graph_type"},
	{apperrors.ErrFileNotFound, "file_not_found"},
	{apperrors.ErrNoData, "no_data"},
	{apperrors.ErrMissingColumns, "missing_columns"},
	{apperrors.ErrNotFound, "not_found"},
	{apperrors.ErrNotConfigured, "not_configured"},
}

// UserErrorCode returns the result code for err, or "" when err is a system
// failure that should surface as a Go error.
func UserErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, e := range userErrorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return ""
}

// errorResult converts err into a structured result when the caller can act
// on it; otherwise err is returned unchanged.
func errorResult(err error, details any) (*mcp.CallToolResult, error) {
	if code := UserErrorCode(err); code != "" {
		return NewErrorResultWithDetails(code, err.Error(), details), nil
	}
	return nil, err
}
