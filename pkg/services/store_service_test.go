package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
	"github.com/grocerydesk/grocery-console/pkg/database"
	"github.com/grocerydesk/grocery-console/pkg/models"
	"github.com/grocerydesk/grocery-console/pkg/repositories"
)

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func getProduct(t *testing.T, connect ConnectFunc, id int64) *models.Product {
	t.Helper()
	var p *models.Product
	require.NoError(t, connect(context.Background(), func(ctx context.Context, _ *database.DB) error {
		var err error
		p, err = repositories.NewProductRepository().Get(ctx, id)
		return err
	}))
	return p
}

func TestStoreService_UpdateInventory(t *testing.T) {
	connect, store := newTestStore(t)
	apple, _ := seedSmallStore(t, connect, store)

	require.NoError(t, store.UpdateInventory(context.Background(), apple.ID, 7))
	assert.Equal(t, 93, getProduct(t, connect, apple.ID).StockQuantity)
}

func TestStoreService_UpdateInventory_InvalidQuantity(t *testing.T) {
	_, store := newTestStore(t)

	assert.Error(t, store.UpdateInventory(context.Background(), 1, 0))
	assert.Error(t, store.UpdateInventory(context.Background(), 1, -3))
}

func TestStoreService_UpdateInventory_UnknownProduct(t *testing.T) {
	_, store := newTestStore(t)

	err := store.UpdateInventory(context.Background(), 999, 1)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestStoreService_CalculateLoyaltyPoints(t *testing.T) {
	connect, store := newTestStore(t)
	ctx := context.Background()
	customers := repositories.NewCustomerRepository()

	c := &models.Customer{FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", LoyaltyPoints: 50}
	require.NoError(t, connect(ctx, func(ctx context.Context, _ *database.DB) error {
		return customers.Create(ctx, c)
	}))

	points, err := store.CalculateLoyaltyPoints(ctx, c.ID, mustDecimal("45.99"))
	require.NoError(t, err)
	assert.Equal(t, 4, points)

	points, err = store.CalculateLoyaltyPoints(ctx, c.ID, mustDecimal("9.99"))
	require.NoError(t, err)
	assert.Equal(t, 0, points)

	var got *models.Customer
	require.NoError(t, connect(ctx, func(ctx context.Context, _ *database.DB) error {
		var err error
		got, err = customers.Get(ctx, c.ID)
		return err
	}))
	assert.Equal(t, 54, got.LoyaltyPoints)
}

func TestStoreService_CalculateLoyaltyPoints_Errors(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CalculateLoyaltyPoints(ctx, 1, mustDecimal("-5"))
	assert.Error(t, err)

	_, err = store.CalculateLoyaltyPoints(ctx, 42, mustDecimal("100"))
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestStoreService_PlaceOrder(t *testing.T) {
	connect, store := newTestStore(t)
	apple, milk := seedSmallStore(t, connect, store)
	ctx := context.Background()

	order, err := store.PlaceOrder(ctx, nil, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), []models.OrderLine{
		{ProductID: apple.ID, Quantity: 3},
		{ProductID: milk.ID, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "2.70", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Details, 2)
	assert.Equal(t, "0.50", order.Details[0].Price.StringFixed(2))

	var stored *models.Order
	require.NoError(t, connect(ctx, func(ctx context.Context, _ *database.DB) error {
		var err error
		stored, err = repositories.NewOrderRepository().Get(ctx, order.ID)
		return err
	}))
	assert.Equal(t, "2.70", stored.TotalAmount.StringFixed(2))
	assert.Len(t, stored.Details, 2)
}

func TestStoreService_PlaceOrder_RollsBackOnUnknownProduct(t *testing.T) {
	connect, store := newTestStore(t)
	apple, _ := seedSmallStore(t, connect, store)
	ctx := context.Background()

	_, err := store.PlaceOrder(ctx, nil, time.Now(), []models.OrderLine{
		{ProductID: apple.ID, Quantity: 1},
		{ProductID: 999, Quantity: 1},
	})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	var count int
	require.NoError(t, connect(ctx, func(ctx context.Context, _ *database.DB) error {
		var err error
		count, err = repositories.NewOrderRepository().Count(ctx)
		return err
	}))
	assert.Equal(t, 1, count)
}

func TestStoreService_PlaceOrder_Validation(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	_, err := store.PlaceOrder(ctx, nil, time.Now(), nil)
	assert.Error(t, err)

	_, err = store.PlaceOrder(ctx, nil, time.Now(), []models.OrderLine{{ProductID: 1, Quantity: 0}})
	assert.Error(t, err)
}

func TestStoreService_PopulateTestData(t *testing.T) {
	connect, store := newTestStore(t)
	ctx := context.Background()

	summary, err := store.PopulateTestData(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Suppliers)
	assert.Equal(t, 9, summary.Products)
	assert.Equal(t, 4, summary.Customers)
	assert.Equal(t, 50, summary.Orders)
	assert.GreaterOrEqual(t, summary.OrderDetails, 50)
	assert.LessOrEqual(t, summary.OrderDetails, 250)

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 0, 301)
	orders := repositories.NewOrderRepository()
	require.NoError(t, connect(ctx, func(ctx context.Context, _ *database.DB) error {
		for id := int64(1); id <= 50; id++ {
			o, err := orders.Get(ctx, id)
			if err != nil {
				return err
			}
			assert.False(t, o.OrderDate.Before(first), "order %d", id)
			assert.True(t, o.OrderDate.Before(last), "order %d", id)

			sum := decimal.Zero
			for _, d := range o.Details {
				assert.True(t, d.Quantity >= 1 && d.Quantity <= 10)
				sum = sum.Add(d.LineTotal())
			}
			assert.True(t, sum.Equal(o.TotalAmount), "order %d: %s != %s", id, sum, o.TotalAmount)
		}
		return nil
	}))
}

func TestStoreService_PopulateTestData_RefusesNonEmptyStore(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	_, err := store.PopulateTestData(ctx, 1)
	require.NoError(t, err)

	_, err = store.PopulateTestData(ctx, 1)
	assert.True(t, errors.Is(err, ErrStoreNotEmpty))
}

func TestStoreService_PopulateTestData_Deterministic(t *testing.T) {
	totals := func() []string {
		connect, store := newTestStore(t)
		ctx := context.Background()
		_, err := store.PopulateTestData(ctx, 42)
		require.NoError(t, err)

		var out []string
		orders := repositories.NewOrderRepository()
		require.NoError(t, connect(ctx, func(ctx context.Context, _ *database.DB) error {
			for id := int64(1); id <= 50; id++ {
				o, err := orders.Get(ctx, id)
				if err != nil {
					return err
				}
				out = append(out, o.OrderDate.Format(time.DateOnly)+" "+o.TotalAmount.StringFixed(2))
			}
			return nil
		}))
		return out
	}

	assert.Equal(t, totals(), totals())
}
