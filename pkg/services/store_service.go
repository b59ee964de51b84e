package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/database"
	"github.com/grocerydesk/grocery-console/pkg/models"
	"github.com/grocerydesk/grocery-console/pkg/repositories"
)

// ErrStoreNotEmpty is returned by PopulateTestData when products already exist.
var ErrStoreNotEmpty = errors.New("store already contains data")

// loyaltyDivisor is the spend that earns one loyalty point.
var loyaltyDivisor = decimal.NewFromInt(10)

// SeedSummary reports what PopulateTestData inserted.
type SeedSummary struct {
	Suppliers    int `json:"suppliers"`
	Products     int `json:"products"`
	Customers    int `json:"customers"`
	Orders       int `json:"orders"`
	OrderDetails int `json:"order_details"`
}

// StoreService runs the predefined store operations.
type StoreService interface {
	// UpdateInventory removes quantity units of a product from stock.
	UpdateInventory(ctx context.Context, productID int64, quantity int) error

	// CalculateLoyaltyPoints credits one point per full 10 spent and returns
	// the points added.
	CalculateLoyaltyPoints(ctx context.Context, customerID int64, totalAmount decimal.Decimal) (int, error)

	// PlaceOrder records an order and its lines in one transaction. Line prices
	// are copied from the products and the total is their sum.
	PlaceOrder(ctx context.Context, customerID *int64, orderDate time.Time, lines []models.OrderLine) (*models.Order, error)

	// PopulateTestData seeds an empty store. The same seed yields the same data.
	PopulateTestData(ctx context.Context, seed uint64) (*SeedSummary, error)
}

type storeService struct {
	connect   ConnectFunc
	suppliers repositories.SupplierRepository
	products  repositories.ProductRepository
	customers repositories.CustomerRepository
	orders    repositories.OrderRepository
	logger    *zap.Logger
}

var _ StoreService = (*storeService)(nil)

// NewStoreService creates a new store service.
func NewStoreService(
	connect ConnectFunc,
	suppliers repositories.SupplierRepository,
	products repositories.ProductRepository,
	customers repositories.CustomerRepository,
	orders repositories.OrderRepository,
	logger *zap.Logger,
) StoreService {
	return &storeService{
		connect:   connect,
		suppliers: suppliers,
		products:  products,
		customers: customers,
		orders:    orders,
		logger:    logger.Named("store"),
	}
}

func (s *storeService) UpdateInventory(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	err := s.connect(ctx, func(ctx context.Context, _ *database.DB) error {
		return s.products.AdjustStock(ctx, productID, -quantity)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Inventory updated",
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity))
	return nil
}

func (s *storeService) CalculateLoyaltyPoints(ctx context.Context, customerID int64, totalAmount decimal.Decimal) (int, error) {
	if totalAmount.IsNegative() {
		return 0, fmt.Errorf("total amount must not be negative, got %s", totalAmount)
	}
	points := int(totalAmount.Div(loyaltyDivisor).Floor().IntPart())

	err := s.connect(ctx, func(ctx context.Context, _ *database.DB) error {
		return s.customers.AddLoyaltyPoints(ctx, customerID, points)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Loyalty points updated",
		zap.Int64("customer_id", customerID),
		zap.String("total_amount", totalAmount.StringFixed(2)),
		zap.Int("points", points))
	return points, nil
}

func (s *storeService) PlaceOrder(ctx context.Context, customerID *int64, orderDate time.Time, lines []models.OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, errors.New("order has no lines")
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("quantity for product %d must be positive, got %d", l.ProductID, l.Quantity)
		}
	}

	order := &models.Order{CustomerID: customerID, OrderDate: orderDate.UTC()}
	err := s.connect(ctx, func(ctx context.Context, db *database.DB) error {
		return db.WithTx(ctx, func(ctx context.Context) error {
			return s.placeOrder(ctx, order, lines)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int("lines", len(order.Details)),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)))
	return order, nil
}

// placeOrder prices the lines and inserts the order using the scope in ctx.
func (s *storeService) placeOrder(ctx context.Context, order *models.Order, lines []models.OrderLine) error {
	order.Details = make([]models.OrderDetail, 0, len(lines))
	order.TotalAmount = decimal.Zero

	for _, l := range lines {
		product, err := s.products.Get(ctx, l.ProductID)
		if err != nil {
			return err
		}
		d := models.OrderDetail{ProductID: product.ID, Quantity: l.Quantity, Price: product.Price}
		order.TotalAmount = order.TotalAmount.Add(d.LineTotal())
		order.Details = append(order.Details, d)
	}

	return s.orders.Create(ctx, order)
}

func (s *storeService) PopulateTestData(ctx context.Context, seed uint64) (*SeedSummary, error) {
	summary := &SeedSummary{}

	err := s.connect(ctx, func(ctx context.Context, db *database.DB) error {
		existing, err := s.products.List(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: %d products", ErrStoreNotEmpty, len(existing))
		}

		return db.WithTx(ctx, func(ctx context.Context) error {
			return s.seed(ctx, rand.New(rand.NewPCG(seed, seed)), summary)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Test data populated",
		zap.Uint64("seed", seed),
		zap.Int("suppliers", summary.Suppliers),
		zap.Int("products", summary.Products),
		zap.Int("customers", summary.Customers),
		zap.Int("orders", summary.Orders),
		zap.Int("order_details", summary.OrderDetails))
	return summary, nil
}

type seedProduct struct {
	name     string
	category string
	price    string
	stock    int
	supplier int // index into seedSuppliers
}

var seedSuppliers = []models.Supplier{
	{Name: "Fresh Farms", ContactInfo: "123-456-7890"},
	{Name: "Dairy World", ContactInfo: "987-654-3210"},
	{Name: "Grain Supplies", ContactInfo: "555-123-4567"},
	{Name: "Seafood Distributors", ContactInfo: "444-789-0123"},
}

var seedProducts = []seedProduct{
	{"Apple", "Fruits", "0.50", 100, 0},
	{"Milk", "Dairy", "1.20", 50, 1},
	{"Bread", "Grains", "2.00", 200, 2},
	{"Salmon", "Seafood", "10.00", 30, 3},
	{"Eggs", "Dairy", "3.00", 150, 1},
	{"Banana", "Fruits", "0.30", 120, 0},
	{"Cheese", "Dairy", "4.50", 40, 1},
	{"Chicken", "Meat", "7.50", 60, 3},
	{"Rice", "Grains", "1.80", 300, 2},
}

var seedCustomers = []models.Customer{
	{FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", LoyaltyPoints: 50},
	{FirstName: "Jane", LastName: "Smith", Email: "jane.smith@example.com", LoyaltyPoints: 100},
	{FirstName: "Alice", LastName: "Johnson", Email: "alice.johnson@example.com", LoyaltyPoints: 200},
	{FirstName: "Bob", LastName: "Brown", Email: "bob.brown@example.com", LoyaltyPoints: 80},
}

const (
	seedOrders       = 50
	seedMaxLines     = 5
	seedMaxQuantity  = 10
	seedDaySpread    = 300
	seedOrderHourUTC = 12
)

var seedStartDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func (s *storeService) seed(ctx context.Context, rng *rand.Rand, summary *SeedSummary) error {
	supplierIDs := make([]int64, 0, len(seedSuppliers))
	for _, sup := range seedSuppliers {
		if err := s.suppliers.Create(ctx, &sup); err != nil {
			return err
		}
		supplierIDs = append(supplierIDs, sup.ID)
	}
	summary.Suppliers = len(supplierIDs)

	products := make([]*models.Product, 0, len(seedProducts))
	for _, sp := range seedProducts {
		supplierID := supplierIDs[sp.supplier]
		p := &models.Product{
			Name:          sp.name,
			Category:      sp.category,
			Price:         decimal.RequireFromString(sp.price),
			StockQuantity: sp.stock,
			SupplierID:    &supplierID,
		}
		if err := s.products.Create(ctx, p); err != nil {
			return err
		}
		products = append(products, p)
	}
	summary.Products = len(products)

	customerIDs := make([]int64, 0, len(seedCustomers))
	for _, c := range seedCustomers {
		if err := s.customers.Create(ctx, &c); err != nil {
			return err
		}
		customerIDs = append(customerIDs, c.ID)
	}
	summary.Customers = len(customerIDs)

	for i := 0; i < seedOrders; i++ {
		customerID := customerIDs[rng.IntN(len(customerIDs))]
		day := rng.IntN(seedDaySpread + 1)
		order := &models.Order{
			CustomerID: &customerID,
			OrderDate:  seedStartDate.AddDate(0, 0, day).Add(seedOrderHourUTC * time.Hour),
		}

		n := 1 + rng.IntN(seedMaxLines)
		for j := 0; j < n; j++ {
			p := products[rng.IntN(len(products))]
			d := models.OrderDetail{ProductID: p.ID, Quantity: 1 + rng.IntN(seedMaxQuantity), Price: p.Price}
			order.TotalAmount = order.TotalAmount.Add(d.LineTotal())
			order.Details = append(order.Details, d)
		}

		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		summary.Orders++
		summary.OrderDetails += len(order.Details)
	}

	return nil
}
