package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
	"github.com/grocerydesk/grocery-console/pkg/config"
	"github.com/grocerydesk/grocery-console/pkg/database"
	"github.com/grocerydesk/grocery-console/pkg/models"
	"github.com/grocerydesk/grocery-console/pkg/repositories"
	"github.com/grocerydesk/grocery-console/pkg/testhelpers"
)

func newTestStore(t *testing.T) (ConnectFunc, StoreService) {
	t.Helper()
	connect := NewConnectFunc(testhelpers.NewSQLiteConfig(t), zap.NewNop())
	store := NewStoreService(connect,
		repositories.NewSupplierRepository(),
		repositories.NewProductRepository(),
		repositories.NewCustomerRepository(),
		repositories.NewOrderRepository(),
		zap.NewNop())
	return connect, store
}

// seedSmallStore inserts Apple (0.50, Fruits) and Milk (1.20, Dairy) and one
// order on 2024-01-05 for 4 apples and 2 milks.
func seedSmallStore(t *testing.T, connect ConnectFunc, store StoreService) (apple, milk *models.Product) {
	t.Helper()
	ctx := context.Background()
	products := repositories.NewProductRepository()

	apple = &models.Product{Name: "Apple", Category: "Fruits", Price: mustDecimal("0.50"), StockQuantity: 100}
	milk = &models.Product{Name: "Milk", Category: "Dairy", Price: mustDecimal("1.20"), StockQuantity: 50}
	require.NoError(t, connect(ctx, func(ctx context.Context, _ *database.DB) error {
		if err := products.Create(ctx, apple); err != nil {
			return err
		}
		return products.Create(ctx, milk)
	}))

	_, err := store.PlaceOrder(ctx, nil, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), []models.OrderLine{
		{ProductID: apple.ID, Quantity: 4},
		{ProductID: milk.ID, Quantity: 2},
	})
	require.NoError(t, err)
	return apple, milk
}

func newTestReportService(t *testing.T, connect ConnectFunc) (ReportService, config.ReportsConfig) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.ReportsConfig{
		CSVDir:   filepath.Join(dir, "csv"),
		GraphDir: filepath.Join(dir, "graphs"),
	}
	return NewReportService(connect, cfg, zap.NewNop()), cfg
}

func TestReportService_ReportTypes(t *testing.T) {
	svc, _ := newTestReportService(t, failConnect(t))

	types := svc.ReportTypes()
	require.Len(t, types, 4)
	assert.Equal(t, "earnings", string(types[0].Type))
	assert.Equal(t, []string{"ProductName", "TotalSold", "TotalRevenue"}, types[2].Columns)
}

func TestReportService_GenerateReport(t *testing.T) {
	connect, store := newTestStore(t)
	seedSmallStore(t, connect, store)
	svc, cfg := newTestReportService(t, connect)

	out, err := svc.GenerateReport(context.Background(), "spending", "q1", "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.CSVDir, "spending_q1.csv"), out.Path)
	assert.Equal(t, 2, out.Rows)
	assert.NotEmpty(t, out.RunID)

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.Equal(t, "Category,TotalSpending\r\nDairy,2.40\r\nFruits,2.00\r\n", string(data))
}

func TestReportService_GenerateReport_Idempotent(t *testing.T) {
	connect, store := newTestStore(t)
	seedSmallStore(t, connect, store)
	svc, _ := newTestReportService(t, connect)
	ctx := context.Background()

	first, err := svc.GenerateReport(ctx, "earnings", "all", "")
	require.NoError(t, err)
	a, err := os.ReadFile(first.Path)
	require.NoError(t, err)

	second, err := svc.GenerateReport(ctx, "earnings", "all", "")
	require.NoError(t, err)
	b, err := os.ReadFile(second.Path)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "OrderDate,TotalEarnings\r\n2024-01-05,4.40\r\n", string(a))
}

func TestReportService_GenerateReport_InvalidType(t *testing.T) {
	svc, cfg := newTestReportService(t, failConnect(t))

	_, err := svc.GenerateReport(context.Background(), "profit", "q1", "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidReportType))
	assert.NoDirExists(t, cfg.CSVDir)
}

func TestReportService_GenerateReport_ExplicitPath(t *testing.T) {
	connect, store := newTestStore(t)
	seedSmallStore(t, connect, store)
	svc, _ := newTestReportService(t, connect)

	path := filepath.Join(t.TempDir(), "custom", "least.csv")
	out, err := svc.GenerateReport(context.Background(), "least_selling", "", path)
	require.NoError(t, err)
	assert.Equal(t, path, out.Path)
	assert.FileExists(t, path)
}

func TestReportService_GenerateGraph(t *testing.T) {
	connect, store := newTestStore(t)
	seedSmallStore(t, connect, store)
	svc, cfg := newTestReportService(t, connect)
	ctx := context.Background()

	_, err := svc.GenerateReport(ctx, "product_performance", "jan", "")
	require.NoError(t, err)

	out, err := svc.GenerateGraph(ctx, "product_performance", "jan", "", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.GraphDir, "product_performance_jan.png"), out.Path)
	assert.Equal(t, 2, out.Bars)

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestReportService_GenerateGraph_MissingCSV(t *testing.T) {
	svc, cfg := newTestReportService(t, failConnect(t))

	_, err := svc.GenerateGraph(context.Background(), "earnings", "monthly", "", "")
	assert.True(t, errors.Is(err, apperrors.ErrFileNotFound))
	assert.NoDirExists(t, cfg.GraphDir)
}

func TestReportService_GenerateGraph_InvalidType(t *testing.T) {
	svc, _ := newTestReportService(t, failConnect(t))

	_, err := svc.GenerateGraph(context.Background(), "pie", "q1", "", "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidGraphType))
}

func TestReportService_GenerateGraphLive(t *testing.T) {
	connect, store := newTestStore(t)
	seedSmallStore(t, connect, store)
	svc, cfg := newTestReportService(t, connect)

	out, err := svc.GenerateGraphLive(context.Background(), "spending", "now", "")
	require.NoError(t, err)
	assert.Equal(t, "query", out.Source)
	assert.FileExists(t, out.Path)
	assert.NoDirExists(t, cfg.CSVDir)
}

func TestReportService_GenerateGraphLive_NoData(t *testing.T) {
	connect, _ := newTestStore(t)
	svc, cfg := newTestReportService(t, connect)

	_, err := svc.GenerateGraphLive(context.Background(), "earnings", "now", "")
	assert.True(t, errors.Is(err, apperrors.ErrNoData))
	assert.NoDirExists(t, cfg.GraphDir)
}
