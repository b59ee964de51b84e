package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
	"github.com/grocerydesk/grocery-console/pkg/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create inserts the order and all of its details. Callers wanting
	// all-or-nothing behaviour run it inside a transaction scope.
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id int64) (*models.Order, error)
	Count(ctx context.Context) (int, error)
}

type orderRepository struct{}

// NewOrderRepository creates a new order repository.
func NewOrderRepository() OrderRepository {
	return &orderRepository{}
}

var _ OrderRepository = (*orderRepository)(nil)

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return err
	}

	orderID, err := scope.Dialect.InsertReturningID(ctx, scope.Conn, `
		INSERT INTO orders (customer_id, order_date, total_amount)
		VALUES (?, ?, ?)`, "order_id",
		nullInt64(order.CustomerID),
		order.OrderDate.UTC(),
		order.TotalAmount.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.ID = orderID

	for i := range order.Details {
		d := &order.Details[i]
		d.OrderID = orderID

		detailID, err := scope.Dialect.InsertReturningID(ctx, scope.Conn, `
			INSERT INTO order_details (order_id, product_id, quantity, price)
			VALUES (?, ?, ?, ?)`, "order_detail_id",
			d.OrderID, d.ProductID, d.Quantity, d.Price.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to create order detail: %w", err)
		}
		d.ID = detailID
	}

	return nil
}

func (r *orderRepository) Get(ctx context.Context, id int64) (*models.Order, error) {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}

	var o models.Order
	var customerID sql.NullInt64
	err = scope.Conn.QueryRowContext(ctx,
		scope.Dialect.Rebind("SELECT order_id, customer_id, order_date, total_amount FROM orders WHERE order_id = ?"), id).
		Scan(&o.ID, &customerID, &o.OrderDate, &o.TotalAmount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if customerID.Valid {
		o.CustomerID = &customerID.Int64
	}

	rows, err := scope.Conn.QueryContext(ctx, scope.Dialect.Rebind(`
		SELECT order_detail_id, order_id, product_id, quantity, price
		FROM order_details
		WHERE order_id = ?
		ORDER BY order_detail_id`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.OrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order detail: %w", err)
		}
		o.Details = append(o.Details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order details: %w", err)
	}

	return &o, nil
}

func (r *orderRepository) Count(ctx context.Context) (int, error) {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	if err := scope.Conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}
