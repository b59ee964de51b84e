package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/config"
	"github.com/grocerydesk/grocery-console/pkg/database"
	"github.com/grocerydesk/grocery-console/pkg/graphs"
	"github.com/grocerydesk/grocery-console/pkg/reports"
)

// ReportOutput describes a generated CSV report.
type ReportOutput struct {
	RunID  string             `json:"run_id"`
	Type   reports.ReportType `json:"report_type"`
	Period string             `json:"time_period"`
	Path   string             `json:"path"`
	Header []string           `json:"header"`
	Rows   int                `json:"rows"`
}

// GraphOutput describes a rendered chart.
type GraphOutput struct {
	RunID  string             `json:"run_id"`
	Type   reports.ReportType `json:"graph_type"`
	Period string             `json:"time_period"`
	Path   string             `json:"path"`
	Source string             `json:"source"` // CSV path, or "query" for live data
	Bars   int                `json:"bars"`
}

// ReportTypeInfo is a report type with its declared columns.
type ReportTypeInfo struct {
	Type        reports.ReportType `json:"report_type"`
	Description string             `json:"description"`
	Columns     []string           `json:"columns"`
}

// ReportService generates CSV reports and charts.
type ReportService interface {
	// ReportTypes lists every report type in menu order.
	ReportTypes() []ReportTypeInfo

	// GenerateReport runs the report query and writes the CSV. An empty
	// outputPath uses the conventional location. Invalid types fail before
	// any connection is opened or file written.
	GenerateReport(ctx context.Context, reportType, period, outputPath string) (*ReportOutput, error)

	// GenerateGraph charts a previously generated CSV. Empty paths use the
	// conventional locations.
	GenerateGraph(ctx context.Context, graphType, period, csvPath, outputPath string) (*GraphOutput, error)

	// GenerateGraphLive charts the current query result without a CSV.
	GenerateGraphLive(ctx context.Context, graphType, period, outputPath string) (*GraphOutput, error)
}

type reportService struct {
	connect ConnectFunc
	cfg     config.ReportsConfig
	logger  *zap.Logger
}

var _ ReportService = (*reportService)(nil)

// NewReportService creates a new report service.
func NewReportService(connect ConnectFunc, cfg config.ReportsConfig, logger *zap.Logger) ReportService {
	return &reportService{
		connect: connect,
		cfg:     cfg,
		logger:  logger.Named("reports"),
	}
}

func (s *reportService) ReportTypes() []ReportTypeInfo {
	types := reports.All()
	infos := make([]ReportTypeInfo, 0, len(types))
	for _, t := range types {
		def, err := reports.Lookup(t)
		if err != nil {
			continue
		}
		infos = append(infos, ReportTypeInfo{Type: t, Description: def.Description, Columns: def.Header()})
	}
	return infos
}

func (s *reportService) GenerateReport(ctx context.Context, reportType, period, outputPath string) (*ReportOutput, error) {
	t, err := reports.ParseReportType(reportType)
	if err != nil {
		return nil, err
	}
	if outputPath == "" {
		outputPath = reports.CSVPath(s.cfg.CSVDir, t, period)
	}

	runID := uuid.NewString()
	start := time.Now()

	var result *reports.Result
	err = s.connect(ctx, func(ctx context.Context, _ *database.DB) error {
		var err error
		result, err = reports.Run(ctx, t)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := reports.WriteCSV(outputPath, result.Header(), result.Records()); err != nil {
		return nil, err
	}

	s.logger.Info("Report generated",
		zap.String("run_id", runID),
		zap.String("report_type", string(t)),
		zap.String("time_period", period),
		zap.String("path", outputPath),
		zap.Int("rows", len(result.Rows)),
		zap.Duration("elapsed", time.Since(start)))

	return &ReportOutput{
		RunID:  runID,
		Type:   t,
		Period: period,
		Path:   outputPath,
		Header: result.Header(),
		Rows:   len(result.Rows),
	}, nil
}

func (s *reportService) GenerateGraph(ctx context.Context, graphType, period, csvPath, outputPath string) (*GraphOutput, error) {
	t, err := reports.ParseGraphType(graphType)
	if err != nil {
		return nil, err
	}
	if csvPath == "" {
		csvPath = reports.CSVPath(s.cfg.CSVDir, t, period)
	}
	if outputPath == "" {
		outputPath = reports.GraphPath(s.cfg.GraphDir, t, period)
	}

	series, err := graphs.FromCSV(csvPath, t)
	if err != nil {
		return nil, err
	}

	return s.render(t, period, csvPath, outputPath, series)
}

func (s *reportService) GenerateGraphLive(ctx context.Context, graphType, period, outputPath string) (*GraphOutput, error) {
	t, err := reports.ParseGraphType(graphType)
	if err != nil {
		return nil, err
	}
	if outputPath == "" {
		outputPath = reports.GraphPath(s.cfg.GraphDir, t, period)
	}

	var result *reports.Result
	err = s.connect(ctx, func(ctx context.Context, _ *database.DB) error {
		var err error
		result, err = reports.Run(ctx, t)
		return err
	})
	if err != nil {
		return nil, err
	}

	series, err := graphs.FromResult(result)
	if err != nil {
		return nil, err
	}

	return s.render(t, period, "query", outputPath, series)
}

func (s *reportService) render(t reports.ReportType, period, source, outputPath string, series *graphs.Series) (*GraphOutput, error) {
	if err := graphs.RenderFile(outputPath, series); err != nil {
		return nil, fmt.Errorf("failed to save graph: %w", err)
	}

	runID := uuid.NewString()
	s.logger.Info("Graph saved",
		zap.String("run_id", runID),
		zap.String("graph_type", string(t)),
		zap.String("source", source),
		zap.String("path", outputPath),
		zap.Int("bars", len(series.Points)))

	return &GraphOutput{
		RunID:  runID,
		Type:   t,
		Period: period,
		Path:   outputPath,
		Source: source,
		Bars:   len(series.Points),
	}, nil
}
