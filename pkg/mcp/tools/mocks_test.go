package tools

import (
	"context"

	"github.com/grocerydesk/grocery-console/pkg/reports"
	"github.com/grocerydesk/grocery-console/pkg/services"
)

// mockReportService implements services.ReportService for testing.
type mockReportService struct {
	reportOut *services.ReportOutput
	graphOut  *services.GraphOutput
	err       error

	lastType   string
	lastPeriod string
	lastCSV    string
	lastOutput string
	calls      int
}

var _ services.ReportService = (*mockReportService)(nil)

func (m *mockReportService) ReportTypes() []services.ReportTypeInfo {
	return []services.ReportTypeInfo{
		{Type: reports.Earnings, Description: "Daily earnings", Columns: []string{"OrderDate", "TotalEarnings"}},
		{Type: reports.Spending, Description: "Spending by category", Columns: []string{"Category", "TotalSpending"}},
	}
}

func (m *mockReportService) GenerateReport(_ context.Context, reportType, period, outputPath string) (*services.ReportOutput, error) {
	m.calls++
	m.lastType, m.lastPeriod, m.lastOutput = reportType, period, outputPath
	if m.err != nil {
		return nil, m.err
	}
	return m.reportOut, nil
}

func (m *mockReportService) GenerateGraph(_ context.Context, graphType, period, csvPath, outputPath string) (*services.GraphOutput, error) {
	m.calls++
	m.lastType, m.lastPeriod, m.lastCSV, m.lastOutput = graphType, period, csvPath, outputPath
	if m.err != nil {
		return nil, m.err
	}
	return m.graphOut, nil
}

func (m *mockReportService) GenerateGraphLive(_ context.Context, graphType, period, outputPath string) (*services.GraphOutput, error) {
	return m.GenerateGraph(context.Background(), graphType, period, "", outputPath)
}
