package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
	"github.com/grocerydesk/grocery-console/pkg/config"
	"github.com/grocerydesk/grocery-console/pkg/email"
	"github.com/grocerydesk/grocery-console/pkg/powerbi"
	"github.com/grocerydesk/grocery-console/pkg/reports"
)

// BIClient is the subset of the Power BI client used for publishing.
type BIClient interface {
	UploadCSV(ctx context.Context, csvPath, table string) (int, error)
	EmbedURL(ctx context.Context, reportID string) (string, error)
}

var _ BIClient = (*powerbi.Client)(nil)

// PublishResult describes an upload to Power BI.
type PublishResult struct {
	Report   *ReportOutput `json:"report"`
	Table    string        `json:"table"`
	Rows     int           `json:"rows"`
	EmbedURL string        `json:"embed_url,omitempty"`
	ViewURL  string        `json:"view_url,omitempty"`
}

// PublishService delivers generated reports to Power BI and by email.
type PublishService interface {
	// UploadAndRefresh regenerates the CSV for reportType, pushes its rows to
	// the configured dataset and, when a report id is configured, returns the
	// viewer link for the embedded report.
	UploadAndRefresh(ctx context.Context, reportType, period string) (*PublishResult, error)

	// EmailReport sends a message with the file at attachmentPath attached.
	EmailReport(ctx context.Context, to, subject, body, attachmentPath string) (*email.Result, error)
}

type publishService struct {
	reports ReportService
	bi      BIClient
	sender  email.Sender
	cfg     config.PowerBIConfig
	baseURL string
	logger  *zap.Logger
}

var _ PublishService = (*publishService)(nil)

// NewPublishService creates a new publish service. bi and sender may be nil
// when Power BI or email are not configured; the matching operations then
// return apperrors.ErrNotConfigured.
func NewPublishService(
	reportService ReportService,
	bi BIClient,
	sender email.Sender,
	cfg config.PowerBIConfig,
	baseURL string,
	logger *zap.Logger,
) PublishService {
	return &publishService{
		reports: reportService,
		bi:      bi,
		sender:  sender,
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.Named("publish"),
	}
}

func (s *publishService) UploadAndRefresh(ctx context.Context, reportType, period string) (*PublishResult, error) {
	t, err := reports.ParseReportType(reportType)
	if err != nil {
		return nil, err
	}
	if s.bi == nil {
		return nil, fmt.Errorf("power bi: %w", apperrors.ErrNotConfigured)
	}

	out, err := s.reports.GenerateReport(ctx, string(t), period, "")
	if err != nil {
		return nil, err
	}

	table := s.cfg.TableName
	if table == "" {
		table = string(t)
	}

	rows, err := s.bi.UploadCSV(ctx, out.Path, table)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to power bi: %w", out.Path, err)
	}

	result := &PublishResult{Report: out, Table: table, Rows: rows}
	if s.cfg.ReportID == "" {
		s.logger.Info("Uploaded report rows; no report id configured for embedding",
			zap.String("table", table),
			zap.Int("rows", rows))
		return result, nil
	}

	embed, err := s.bi.EmbedURL(ctx, s.cfg.ReportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get embed URL: %w", err)
	}
	result.EmbedURL = embed
	result.ViewURL = s.ViewURL(embed)

	s.logger.Info("Power BI report refreshed",
		zap.String("table", table),
		zap.Int("rows", rows),
		zap.String("view_url", result.ViewURL))
	return result, nil
}

// ViewURL returns the local viewer link for an embed URL.
func (s *publishService) ViewURL(embedURL string) string {
	return s.baseURL + "/view_report/" + url.PathEscape(embedURL)
}

func (s *publishService) EmailReport(ctx context.Context, to, subject, body, attachmentPath string) (*email.Result, error) {
	if s.sender == nil {
		return nil, fmt.Errorf("email: %w", apperrors.ErrNotConfigured)
	}
	return s.sender.Send(ctx, &email.Message{
		To:             to,
		Subject:        subject,
		Body:           body,
		AttachmentPath: attachmentPath,
	})
}
