package repositories

import (
	"context"
	"fmt"

	"github.com/grocerydesk/grocery-console/pkg/models"
)

// SupplierRepository defines the interface for supplier data access.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *models.Supplier) error
	List(ctx context.Context) ([]*models.Supplier, error)
}

type supplierRepository struct{}

// NewSupplierRepository creates a new supplier repository.
func NewSupplierRepository() SupplierRepository {
	return &supplierRepository{}
}

var _ SupplierRepository = (*supplierRepository)(nil)

func (r *supplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return err
	}

	id, err := scope.Dialect.InsertReturningID(ctx, scope.Conn,
		"INSERT INTO suppliers (supplier_name, contact_info) VALUES (?, ?)", "supplier_id",
		supplier.Name, nullString(supplier.ContactInfo))
	if err != nil {
		return fmt.Errorf("failed to create supplier: %w", err)
	}

	supplier.ID = id
	return nil
}

func (r *supplierRepository) List(ctx context.Context) ([]*models.Supplier, error) {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := scope.Conn.QueryContext(ctx, `
		SELECT supplier_id, supplier_name, COALESCE(contact_info, '')
		FROM suppliers
		ORDER BY supplier_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []*models.Supplier
	for rows.Next() {
		var s models.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.ContactInfo); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suppliers: %w", err)
	}

	return suppliers, nil
}
