//go:build integration

package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
	"github.com/grocerydesk/grocery-console/pkg/database"
	"github.com/grocerydesk/grocery-console/pkg/models"
	"github.com/grocerydesk/grocery-console/pkg/repositories"
	"github.com/grocerydesk/grocery-console/pkg/testhelpers"
)

// newEngineStore returns an emptied store on the shared container for driver.
// Identity columns keep counting across resets, so callers use returned IDs.
func newEngineStore(t *testing.T, driver string) (ConnectFunc, StoreService) {
	t.Helper()
	testDB := testhelpers.GetEngineTestDB(t, driver)
	testhelpers.ResetStore(t, testDB.Config)

	connect := NewConnectFunc(testDB.Config, zap.NewNop())
	store := NewStoreService(connect,
		repositories.NewSupplierRepository(),
		repositories.NewProductRepository(),
		repositories.NewCustomerRepository(),
		repositories.NewOrderRepository(),
		zap.NewNop())
	return connect, store
}

func readReport(t *testing.T, svc ReportService, reportType string) string {
	t.Helper()
	out, err := svc.GenerateReport(context.Background(), reportType, "all", "")
	require.NoError(t, err)
	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	return string(data)
}

func TestIntegration_Reports(t *testing.T) {
	for _, driver := range testhelpers.EngineDrivers() {
		t.Run(driver, func(t *testing.T) {
			connect, store := newEngineStore(t, driver)
			seedSmallStore(t, connect, store)
			svc, _ := newTestReportService(t, connect)

			t.Run("earnings", func(t *testing.T) {
				assert.Equal(t, "OrderDate,TotalEarnings\r\n2024-01-05,4.40\r\n", readReport(t, svc, "earnings"))
			})

			t.Run("spending", func(t *testing.T) {
				assert.Equal(t, "Category,TotalSpending\r\nDairy,2.40\r\nFruits,2.00\r\n", readReport(t, svc, "spending"))
			})

			t.Run("product performance sorts best sellers first", func(t *testing.T) {
				assert.Equal(t, "ProductName,TotalSold,TotalRevenue\r\nApple,4,2.00\r\nMilk,2,2.40\r\n",
					readReport(t, svc, "product_performance"))
			})

			t.Run("least selling sorts slowest first", func(t *testing.T) {
				assert.Equal(t, "ProductName,TotalSold\r\nMilk,2\r\nApple,4\r\n", readReport(t, svc, "least_selling"))
			})

			t.Run("regenerating is byte identical", func(t *testing.T) {
				for _, reportType := range []string{"earnings", "spending", "product_performance", "least_selling"} {
					assert.Equal(t, readReport(t, svc, reportType), readReport(t, svc, reportType), reportType)
				}
			})
		})
	}
}

func TestIntegration_StoreOperations(t *testing.T) {
	for _, driver := range testhelpers.EngineDrivers() {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()

			t.Run("place order and update inventory", func(t *testing.T) {
				connect, store := newEngineStore(t, driver)
				apple, milk := seedSmallStore(t, connect, store)
				require.NotZero(t, apple.ID)
				require.NotEqual(t, apple.ID, milk.ID)

				order, err := store.PlaceOrder(ctx, nil, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), []models.OrderLine{
					{ProductID: apple.ID, Quantity: 3},
					{ProductID: milk.ID, Quantity: 1},
				})
				require.NoError(t, err)
				require.NotZero(t, order.ID)

				var stored *models.Order
				require.NoError(t, connect(ctx, func(ctx context.Context, _ *database.DB) error {
					var err error
					stored, err = repositories.NewOrderRepository().Get(ctx, order.ID)
					return err
				}))
				assert.Equal(t, "2.70", stored.TotalAmount.StringFixed(2))
				assert.Len(t, stored.Details, 2)

				require.NoError(t, store.UpdateInventory(ctx, apple.ID, 7))
				assert.Equal(t, 93, getProduct(t, connect, apple.ID).StockQuantity)
			})

			t.Run("unknown product rolls back the order", func(t *testing.T) {
				connect, store := newEngineStore(t, driver)
				apple, milk := seedSmallStore(t, connect, store)

				_, err := store.PlaceOrder(ctx, nil, time.Now(), []models.OrderLine{
					{ProductID: apple.ID, Quantity: 1},
					{ProductID: apple.ID + milk.ID + 1000, Quantity: 1},
				})
				assert.True(t, errors.Is(err, apperrors.ErrNotFound))

				var count int
				require.NoError(t, connect(ctx, func(ctx context.Context, _ *database.DB) error {
					var err error
					count, err = repositories.NewOrderRepository().Count(ctx)
					return err
				}))
				assert.Equal(t, 1, count)
			})

			t.Run("updates that change nothing still find the row", func(t *testing.T) {
				connect, store := newEngineStore(t, driver)
				apple, _ := seedSmallStore(t, connect, store)
				customers := repositories.NewCustomerRepository()

				c := &models.Customer{FirstName: "Jane", LastName: "Doe", Email: "jane.doe@example.com", LoyaltyPoints: 50}
				require.NoError(t, connect(ctx, func(ctx context.Context, _ *database.DB) error {
					return customers.Create(ctx, c)
				}))

				points, err := store.CalculateLoyaltyPoints(ctx, c.ID, mustDecimal("5.00"))
				require.NoError(t, err)
				assert.Equal(t, 0, points)

				points, err = store.CalculateLoyaltyPoints(ctx, c.ID, mustDecimal("45.99"))
				require.NoError(t, err)
				assert.Equal(t, 4, points)

				require.NoError(t, connect(ctx, func(ctx context.Context, _ *database.DB) error {
					return repositories.NewProductRepository().UpdatePrice(ctx, apple.ID, mustDecimal("0.50"))
				}))
				assert.Equal(t, "0.50", getProduct(t, connect, apple.ID).Price.StringFixed(2))
			})

			t.Run("populate test data", func(t *testing.T) {
				connect, store := newEngineStore(t, driver)

				summary, err := store.PopulateTestData(ctx, 7)
				require.NoError(t, err)
				assert.Equal(t, 50, summary.Orders)
				assert.GreaterOrEqual(t, summary.OrderDetails, 50)

				var count int
				require.NoError(t, connect(ctx, func(ctx context.Context, _ *database.DB) error {
					var err error
					count, err = repositories.NewOrderRepository().Count(ctx)
					return err
				}))
				assert.Equal(t, 50, count)

				_, err = store.PopulateTestData(ctx, 7)
				assert.True(t, errors.Is(err, ErrStoreNotEmpty))
			})
		})
	}
}
