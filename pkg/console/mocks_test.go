package console

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/grocerydesk/grocery-console/pkg/email"
	"github.com/grocerydesk/grocery-console/pkg/models"
	"github.com/grocerydesk/grocery-console/pkg/services"
)

type mockReportService struct {
	reportOut *services.ReportOutput
	graphOut  *services.GraphOutput
	err       error

	reportCalls []string
	graphCalls  []string
	liveCalls   []string
}

func (m *mockReportService) ReportTypes() []services.ReportTypeInfo { return nil }

func (m *mockReportService) GenerateReport(_ context.Context, reportType, period, _ string) (*services.ReportOutput, error) {
	m.reportCalls = append(m.reportCalls, reportType+"/"+period)
	return m.reportOut, m.err
}

func (m *mockReportService) GenerateGraph(_ context.Context, graphType, period, _, _ string) (*services.GraphOutput, error) {
	m.graphCalls = append(m.graphCalls, graphType+"/"+period)
	return m.graphOut, m.err
}

func (m *mockReportService) GenerateGraphLive(_ context.Context, graphType, period, _ string) (*services.GraphOutput, error) {
	m.liveCalls = append(m.liveCalls, graphType+"/"+period)
	return m.graphOut, m.err
}

type mockPublishService struct {
	publishResult *services.PublishResult
	emailResult   *email.Result
	err           error

	emails []string
}

func (m *mockPublishService) UploadAndRefresh(_ context.Context, _, _ string) (*services.PublishResult, error) {
	return m.publishResult, m.err
}

func (m *mockPublishService) EmailReport(_ context.Context, to, subject, _, attachmentPath string) (*email.Result, error) {
	m.emails = append(m.emails, to+"|"+subject+"|"+attachmentPath)
	return m.emailResult, m.err
}

type mockStoreService struct {
	points int
	err    error

	inventory []int64
	totals    []decimal.Decimal
}

func (m *mockStoreService) UpdateInventory(_ context.Context, productID int64, quantity int) error {
	m.inventory = append(m.inventory, productID, int64(quantity))
	return m.err
}

func (m *mockStoreService) CalculateLoyaltyPoints(_ context.Context, _ int64, total decimal.Decimal) (int, error) {
	m.totals = append(m.totals, total)
	return m.points, m.err
}

func (m *mockStoreService) PlaceOrder(_ context.Context, _ *int64, _ time.Time, _ []models.OrderLine) (*models.Order, error) {
	return nil, m.err
}

func (m *mockStoreService) PopulateTestData(_ context.Context, _ uint64) (*services.SeedSummary, error) {
	return nil, m.err
}
