package reports

import (
	"github.com/grocerydesk/grocery-console/pkg/database"
)

// Totals always come from the price stored on the order detail, never from
// the product's current price.

func earningsQuery(d *database.Dialect) string {
	day := d.DateExpr("o.order_date")
	return `
		SELECT ` + day + ` AS order_date,
		       SUM(o.total_amount) AS total_earnings
		FROM orders o
		GROUP BY ` + day + `
		ORDER BY ` + day
}

func spendingQuery(_ *database.Dialect) string {
	return `
		SELECT COALESCE(p.category, '') AS category,
		       SUM(od.price * od.quantity) AS total_spending
		FROM order_details od
		JOIN products p ON od.product_id = p.product_id
		GROUP BY COALESCE(p.category, '')
		ORDER BY COALESCE(p.category, '')`
}

func productPerformanceQuery(_ *database.Dialect) string {
	return `
		SELECT p.product_name AS product_name,
		       SUM(od.quantity) AS total_sold,
		       SUM(od.price * od.quantity) AS total_revenue
		FROM order_details od
		JOIN products p ON od.product_id = p.product_id
		GROUP BY p.product_id, p.product_name
		ORDER BY SUM(od.quantity) DESC, p.product_name, p.product_id`
}

func leastSellingQuery(_ *database.Dialect) string {
	return `
		SELECT p.product_name AS product_name,
		       SUM(od.quantity) AS total_sold
		FROM order_details od
		JOIN products p ON od.product_id = p.product_id
		GROUP BY p.product_id, p.product_name
		HAVING SUM(od.quantity) > 0
		ORDER BY SUM(od.quantity) ASC, p.product_name, p.product_id`
}
