// Package models contains domain types for the grocery store.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier provides products to the store.
type Supplier struct {
	ID          int64  `json:"supplier_id"`
	Name        string `json:"supplier_name"`
	ContactInfo string `json:"contact_info,omitempty"`
}

// Product is an item on the shelf.
type Product struct {
	ID            int64           `json:"product_id"`
	Name          string          `json:"product_name"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	SupplierID    *int64          `json:"supplier_id,omitempty"`
}

// Customer is a registered shopper earning loyalty points.
type Customer struct {
	ID            int64  `json:"customer_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	LoyaltyPoints int    `json:"loyalty_points"`
}

// FullName joins first and last name.
func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Order is a single checkout. CustomerID is nil for anonymous sales.
type Order struct {
	ID          int64           `json:"order_id"`
	CustomerID  *int64          `json:"customer_id,omitempty"`
	OrderDate   time.Time       `json:"order_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Details     []OrderDetail   `json:"details,omitempty"`
}

// OrderDetail is one line of an order. Price is the unit price at the time of
// sale and does not follow later changes to Product.Price.
type OrderDetail struct {
	ID        int64           `json:"order_detail_id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// LineTotal is Price × Quantity.
func (d *OrderDetail) LineTotal() decimal.Decimal {
	return d.Price.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// OrderLine is a requested purchase before prices are resolved.
type OrderLine struct {
	ProductID int64
	Quantity  int
}
