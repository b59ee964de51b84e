package console

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
	"github.com/grocerydesk/grocery-console/pkg/email"
	"github.com/grocerydesk/grocery-console/pkg/services"
)

func runConsole(t *testing.T, deps Deps, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	c := New(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, deps, zap.NewNop())
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func TestConsole_Exit(t *testing.T) {
	out := runConsole(t, Deps{}, "6")
	assert.Contains(t, out, "=== Grocery Store Management Console ===")
	assert.Contains(t, out, "Exiting... Goodbye!")
}

func TestConsole_EndOfInput(t *testing.T) {
	out := runConsole(t, Deps{})
	assert.Contains(t, out, "Enter your choice: ")
	assert.NotContains(t, out, "Goodbye")
}

func TestConsole_InvalidChoice(t *testing.T) {
	out := runConsole(t, Deps{}, "9", "6")
	assert.Contains(t, out, "Invalid choice. Please try again.")
	assert.Contains(t, out, "Goodbye")
}

func TestConsole_GenerateReport(t *testing.T) {
	reports := &mockReportService{reportOut: &services.ReportOutput{Path: "reports/csv/spending_q1.csv", Rows: 2}}

	out := runConsole(t, Deps{Reports: reports}, "1", "spending", "q1", "6")
	assert.Equal(t, []string{"spending/q1"}, reports.reportCalls)
	assert.Contains(t, out, "Report saved to reports/csv/spending_q1.csv (2 rows).")
}

func TestConsole_GenerateReport_SingleRow(t *testing.T) {
	reports := &mockReportService{reportOut: &services.ReportOutput{Path: "earnings_all.csv", Rows: 1}}

	out := runConsole(t, Deps{Reports: reports}, "1", "earnings", "all", "6")
	assert.Contains(t, out, "(1 row).")
}

func TestConsole_GenerateReport_ErrorContinues(t *testing.T) {
	reports := &mockReportService{err: fmt.Errorf("%w: %q", apperrors.ErrInvalidReportType, "profit")}

	out := runConsole(t, Deps{Reports: reports}, "1", "profit", "q1", "6")
	assert.Contains(t, out, "Error: ")
	assert.Contains(t, out, `"profit"`)
	assert.Contains(t, out, "Goodbye")
}

func TestConsole_GenerateGraph(t *testing.T) {
	reports := &mockReportService{graphOut: &services.GraphOutput{Path: "reports/graphs/earnings_q1.png", Bars: 3}}

	out := runConsole(t, Deps{Reports: reports}, "2", "earnings", "q1", "", "2", "earnings", "q1", "y", "6")
	assert.Equal(t, []string{"earnings/q1"}, reports.graphCalls)
	assert.Equal(t, []string{"earnings/q1"}, reports.liveCalls)
	assert.Contains(t, out, "Graph saved to reports/graphs/earnings_q1.png (3 bars).")
}

func TestConsole_GenerateGraph_NoData(t *testing.T) {
	reports := &mockReportService{err: apperrors.ErrNoData}

	out := runConsole(t, Deps{Reports: reports}, "2", "earnings", "q1", "n", "6")
	assert.Contains(t, out, "Nothing to plot")
}

func TestConsole_UploadAndRefresh(t *testing.T) {
	publish := &mockPublishService{publishResult: &services.PublishResult{
		Table:   "spending",
		Rows:    4,
		ViewURL: "http://localhost:3443/view_report/x",
	}}

	out := runConsole(t, Deps{Publish: publish}, "3", "spending", "q1", "6")
	assert.Contains(t, out, "Uploaded 4 rows to table spending.")
	assert.Contains(t, out, "View the report at http://localhost:3443/view_report/x")
}

func TestConsole_UploadAndRefresh_NotConfigured(t *testing.T) {
	publish := &mockPublishService{err: fmt.Errorf("power bi: %w", apperrors.ErrNotConfigured)}

	out := runConsole(t, Deps{Publish: publish}, "3", "spending", "q1", "6")
	assert.Contains(t, out, "Check the configuration.")
}

func TestConsole_SendEmail(t *testing.T) {
	publish := &mockPublishService{emailResult: &email.Result{StatusCode: 202, AttachmentIncluded: false}}

	out := runConsole(t, Deps{Publish: publish},
		"4", "manager@example.com", "Weekly", "See attached.", "missing.csv", "6")
	assert.Equal(t, []string{"manager@example.com|Weekly|missing.csv"}, publish.emails)
	assert.Contains(t, out, "Email sent to manager@example.com (status 202).")
	assert.Contains(t, out, "Attachment missing.csv was not found")
}

func TestConsole_SendEmail_RequiresRecipient(t *testing.T) {
	publish := &mockPublishService{}

	out := runConsole(t, Deps{Publish: publish}, "4", "", "Weekly", "", "", "6")
	assert.Empty(t, publish.emails)
	assert.Contains(t, out, "recipient email is required")
}

func TestConsole_UpdateInventory(t *testing.T) {
	store := &mockStoreService{}

	out := runConsole(t, Deps{Store: store}, "5", "1", "3", "7", "6")
	assert.Equal(t, []int64{3, 7}, store.inventory)
	assert.Contains(t, out, "7 units removed from product 3")
}

func TestConsole_UpdateInventory_InvalidNumber(t *testing.T) {
	store := &mockStoreService{}

	out := runConsole(t, Deps{Store: store}, "5", "1", "abc", "6")
	assert.Empty(t, store.inventory)
	assert.Contains(t, out, `invalid number "abc"`)
}

func TestConsole_CalculateLoyaltyPoints(t *testing.T) {
	store := &mockStoreService{points: 4}

	out := runConsole(t, Deps{Store: store}, "5", "2", "1", "45.99", "6")
	require.Len(t, store.totals, 1)
	assert.Equal(t, "45.99", store.totals[0].String())
	assert.Contains(t, out, "Added 4 loyalty points to customer 1.")
}

func TestCountOf(t *testing.T) {
	assert.Equal(t, "1 row", countOf(1, "row"))
	assert.Equal(t, "0 rows", countOf(0, "row"))
	assert.Equal(t, "2 categories", countOf(2, "category"))
}
