package services

import (
	"context"
	"testing"

	"github.com/grocerydesk/grocery-console/pkg/database"
	"github.com/grocerydesk/grocery-console/pkg/email"
)

// mockBIClient implements BIClient for testing.
type mockBIClient struct {
	uploadRows int
	uploadErr  error
	embedURL   string
	embedErr   error

	uploadedPath  string
	uploadedTable string
	embedCalls    int
}

func (m *mockBIClient) UploadCSV(_ context.Context, csvPath, table string) (int, error) {
	m.uploadedPath = csvPath
	m.uploadedTable = table
	if m.uploadErr != nil {
		return 0, m.uploadErr
	}
	return m.uploadRows, nil
}

func (m *mockBIClient) EmbedURL(_ context.Context, _ string) (string, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return "", m.embedErr
	}
	return m.embedURL, nil
}

// mockSender implements email.Sender for testing.
type mockSender struct {
	sent []*email.Message
	err  error
}

func (m *mockSender) Send(_ context.Context, msg *email.Message) (*email.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, msg)
	return &email.Result{StatusCode: 202, AttachmentIncluded: msg.AttachmentPath != ""}, nil
}

// mockReportService implements ReportService for testing.
type mockReportService struct {
	output *ReportOutput
	err    error
	calls  int
}

func (m *mockReportService) ReportTypes() []ReportTypeInfo { return nil }

func (m *mockReportService) GenerateReport(_ context.Context, _, _, _ string) (*ReportOutput, error) {
	m.calls++
	return m.output, m.err
}

func (m *mockReportService) GenerateGraph(_ context.Context, _, _, _, _ string) (*GraphOutput, error) {
	return nil, nil
}

func (m *mockReportService) GenerateGraphLive(_ context.Context, _, _, _ string) (*GraphOutput, error) {
	return nil, nil
}

// failConnect returns a ConnectFunc that fails the test if a connection is
// ever requested.
func failConnect(t *testing.T) ConnectFunc {
	return func(_ context.Context, _ func(ctx context.Context, db *database.DB) error) error {
		t.Fatal("connection should not have been opened")
		return nil
	}
}
