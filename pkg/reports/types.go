// Package reports turns the store's order data into aggregate reports.
//
// There are exactly four report types. Each one owns its SQL, its declared
// output columns and how it is drawn as a bar chart. Anything else is rejected
// before a connection is opened or a file is touched.
package reports

import (
	"fmt"
	"strings"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
	"github.com/grocerydesk/grocery-console/pkg/database"
)

// ReportType is the closed set of reports the store can produce.
type ReportType string

const (
	Earnings           ReportType = "earnings"
	Spending           ReportType = "spending"
	ProductPerformance ReportType = "product_performance"
	LeastSelling       ReportType = "least_selling"
)

// ColumnKind says how a column is formatted.
type ColumnKind int

const (
	KindLabel  ColumnKind = iota // first column: date, category or product name
	KindCount                    // whole number
	KindAmount                   // money, two decimals
)

// Column is a declared output column. Names are the CSV header and do not
// depend on how a driver reports column aliases.
type Column struct {
	Name string
	Kind ColumnKind
}

// GraphMapping tells the chart renderer which columns to plot.
type GraphMapping struct {
	XColumn string
	YColumn string
	XLabel  string
	YLabel  string
	Title   string
}

// Definition is everything needed to run and present one report type.
type Definition struct {
	Type        ReportType
	Description string
	Columns     []Column
	Graph       GraphMapping

	query func(d *database.Dialect) string
}

// Query returns the SQL for this report in the given dialect.
func (def *Definition) Query(d *database.Dialect) string {
	return def.query(d)
}

// Header returns the declared column names in order.
func (def *Definition) Header() []string {
	names := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		names[i] = c.Name
	}
	return names
}

var definitions = map[ReportType]*Definition{
	Earnings: {
		Type:        Earnings,
		Description: "Sum of order totals per calendar day",
		Columns: []Column{
			{Name: "OrderDate", Kind: KindLabel},
			{Name: "TotalEarnings", Kind: KindAmount},
		},
		Graph: GraphMapping{
			XColumn: "OrderDate", YColumn: "TotalEarnings",
			XLabel: "Order Date", YLabel: "Total Earnings",
			Title: "Earnings Graph",
		},
		query: earningsQuery,
	},
	Spending: {
		Type:        Spending,
		Description: "Sum of price times quantity per product category",
		Columns: []Column{
			{Name: "Category", Kind: KindLabel},
			{Name: "TotalSpending", Kind: KindAmount},
		},
		Graph: GraphMapping{
			XColumn: "Category", YColumn: "TotalSpending",
			XLabel: "Category", YLabel: "Total Spending",
			Title: "Spending Graph",
		},
		query: spendingQuery,
	},
	ProductPerformance: {
		Type:        ProductPerformance,
		Description: "Units sold and revenue per product, best sellers first",
		Columns: []Column{
			{Name: "ProductName", Kind: KindLabel},
			{Name: "TotalSold", Kind: KindCount},
			{Name: "TotalRevenue", Kind: KindAmount},
		},
		Graph: GraphMapping{
			XColumn: "ProductName", YColumn: "TotalSold",
			XLabel: "Product Name", YLabel: "Total Sold",
			Title: "Product Performance Graph",
		},
		query: productPerformanceQuery,
	},
	LeastSelling: {
		Type:        LeastSelling,
		Description: "Units sold per product that sold at least once, slowest first",
		Columns: []Column{
			{Name: "ProductName", Kind: KindLabel},
			{Name: "TotalSold", Kind: KindCount},
		},
		Graph: GraphMapping{
			XColumn: "ProductName", YColumn: "TotalSold",
			XLabel: "Product Name", YLabel: "Total Sold",
			Title: "Least Selling Graph",
		},
		query: leastSellingQuery,
	},
}

// All returns every report type in menu order.
func All() []ReportType {
	return []ReportType{Earnings, Spending, ProductPerformance, LeastSelling}
}

// ParseReportType validates a user-supplied report type.
func ParseReportType(s string) (ReportType, error) {
	t := ReportType(strings.TrimSpace(s))
	if _, ok := definitions[t]; !ok {
		return "", fmt.Errorf("%w: %q (valid: %s)", apperrors.ErrInvalidReportType, s, validList())
	}
	return t, nil
}

// ParseGraphType validates a user-supplied graph type. Every report type can be graphed.
func ParseGraphType(s string) (ReportType, error) {
	t := ReportType(strings.TrimSpace(s))
	if _, ok := definitions[t]; !ok {
		return "", fmt.Errorf("%w: %q (valid: %s)", apperrors.ErrInvalidGraphType, s, validList())
	}
	return t, nil
}

// Lookup returns the definition for a report type.
func Lookup(t ReportType) (*Definition, error) {
	def, ok := definitions[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidReportType, string(t))
	}
	return def, nil
}

func validList() string {
	names := make([]string, 0, len(definitions))
	for _, t := range All() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
