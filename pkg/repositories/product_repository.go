package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
	"github.com/grocerydesk/grocery-console/pkg/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Get(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	// AdjustStock adds delta (negative to remove) to the stock quantity.
	AdjustStock(ctx context.Context, id int64, delta int) error
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error
}

type productRepository struct{}

// NewProductRepository creates a new product repository.
func NewProductRepository() ProductRepository {
	return &productRepository{}
}

var _ ProductRepository = (*productRepository)(nil)

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return err
	}

	id, err := scope.Dialect.InsertReturningID(ctx, scope.Conn, `
		INSERT INTO products (product_name, category, price, stock_quantity, supplier_id)
		VALUES (?, ?, ?, ?, ?)`, "product_id",
		product.Name,
		nullString(product.Category),
		product.Price.String(),
		product.StockQuantity,
		nullInt64(product.SupplierID),
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	product.ID = id
	return nil
}

const productColumns = `product_id, product_name, COALESCE(category, ''), price, stock_quantity, supplier_id`

func scanProduct(scan func(dest ...any) error) (*models.Product, error) {
	var p models.Product
	var supplierID sql.NullInt64
	if err := scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.StockQuantity, &supplierID); err != nil {
		return nil, err
	}
	if supplierID.Valid {
		p.SupplierID = &supplierID.Int64
	}
	return &p, nil
}

func (r *productRepository) Get(ctx context.Context, id int64) (*models.Product, error) {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}

	row := scope.Conn.QueryRowContext(ctx,
		scope.Dialect.Rebind("SELECT "+productColumns+" FROM products WHERE product_id = ?"), id)
	p, err := scanProduct(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (r *productRepository) List(ctx context.Context) ([]*models.Product, error) {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := scope.Conn.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY product_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) AdjustStock(ctx context.Context, id int64, delta int) error {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return err
	}

	res, err := scope.Conn.ExecContext(ctx,
		scope.Dialect.Rebind("UPDATE products SET stock_quantity = stock_quantity + ? WHERE product_id = ?"),
		delta, id)
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	return requireOneRow(res, "product", id)
}

func (r *productRepository) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error {
	scope, err := scopeFrom(ctx)
	if err != nil {
		return err
	}

	res, err := scope.Conn.ExecContext(ctx,
		scope.Dialect.Rebind("UPDATE products SET price = ? WHERE product_id = ?"),
		price.String(), id)
	if err != nil {
		return fmt.Errorf("failed to update price: %w", err)
	}
	return requireOneRow(res, "product", id)
}
