package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
	"github.com/grocerydesk/grocery-console/pkg/models"
)

// CustomerRepository defines the interface for customer data access.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	Get(ctx context.Context, id int64) (*models.Customer, error)
	List(ctx context.Context) ([]*models.Customer, error)
	AddLoyaltyPoints(ctx context.Context, id int64, points int) error
}

type customerRepository struct{}

// NewCustomerRepository creates a new customer repository.
func NewCustomerRepository() CustomerRepository {
	return &customerRepository{}
}

var _ CustomerRepository = (*customerRepository)(nil)

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return err
	}

	id, err := scope.Dialect.InsertReturningID(ctx, scope.Conn, `
		INSERT INTO customers (first_name, last_name, email, loyalty_points)
		VALUES (?, ?, ?, ?)`, "customer_id",
		customer.FirstName,
		customer.LastName,
		nullString(customer.Email),
		customer.LoyaltyPoints,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	customer.ID = id
	return nil
}

const customerColumns = `customer_id, first_name, last_name, COALESCE(email, ''), loyalty_points`

func (r *customerRepository) Get(ctx context.Context, id int64) (*models.Customer, error) {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}

	var c models.Customer
	err = scope.Conn.QueryRowContext(ctx,
		scope.Dialect.Rebind("SELECT "+customerColumns+" FROM customers WHERE customer_id = ?"), id).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.LoyaltyPoints)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (r *customerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := scope.Conn.QueryContext(ctx, "SELECT "+customerColumns+" FROM customers ORDER BY customer_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.LoyaltyPoints); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

func (r *customerRepository) AddLoyaltyPoints(ctx context.Context, id int64, points int) error {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return err
	}

	res, err := scope.Conn.ExecContext(ctx,
		scope.Dialect.Rebind("UPDATE customers SET loyalty_points = loyalty_points + ? WHERE customer_id = ?"),
		points, id)
	if err != nil {
		return fmt.Errorf("failed to add loyalty points: %w", err)
	}
	return requireOneRow(res, "customer", id)
}
