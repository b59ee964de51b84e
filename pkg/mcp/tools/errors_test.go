package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
)

// getTextContent extracts the text string from the first text content item
func getTextContent(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	jsonBytes, _ := json.Marshal(result.Content[0])
	var textContent struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	_ = json.Unmarshal(jsonBytes, &textContent)
	return textContent.Text
}

func TestNewErrorResult(t *testing.T) {
	result := NewErrorResult("invalid_report_type", "unknown report type")

	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	assert.True(t, result.IsError)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(getTextContent(result)), &errResp))

	assert.True(t, errResp.Error, "error field should be true")
	assert.Equal(t, "invalid_report_type", errResp.Code)
	assert.Equal(t, "unknown report type", errResp.Message)
	assert.Nil(t, errResp.Details, "details should be nil when not provided")
}

func TestNewErrorResultWithDetails(t *testing.T) {
	result := NewErrorResultWithDetails("invalid_graph_type", "unknown graph type", map[string]any{
		"valid_types": []string{"earnings", "spending"},
	})

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(getTextContent(result)), &errResp))

	detailsMap, ok := errResp.Details.(map[string]any)
	require.True(t, ok, "details should be a map")
	assert.Equal(t, []any{"earnings", "spending"}, detailsMap["valid_types"])
}

func TestUserErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"wrapped invalid report type", fmt.Errorf("parse: %w", apperrors.ErrInvalidReportType), "invalid_report_type"},
		{"invalid graph type", apperrors.ErrInvalidGraphType, "invalid_graph_type"},
		{"missing csv", fmt.Errorf("reports/csv/earnings_all.csv: %w", apperrors.ErrFileNotFound), "file_not_found"},
		{"no data", apperrors.ErrNoData, "no_data"},
		{"missing columns", apperrors.ErrMissingColumns, "missing_columns"},
		{"not configured", apperrors.ErrNotConfigured, "not_configured"},
		{"connection failure", errors.New("failed to ping database: connection refused"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserErrorCode(tt.err))
		})
	}
}

func TestErrorResult_SystemErrorPassesThrough(t *testing.T) {
	sysErr := errors.New("failed to ping database")

	result, err := errorResult(sysErr, nil)
	assert.Nil(t, result)
	assert.Equal(t, sysErr, err)
}
