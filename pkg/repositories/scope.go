// Package repositories holds the SQL for the grocery store tables.
// Every repository reads its connection from the database scope in context,
// so the same code runs against a plain connection or inside a transaction.
package repositories

import (
	"context"
	"fmt"

	"github.com/grocerydesk/grocery-console/pkg/database"
)

func scopeFrom(ctx context.Context) (*database.Scope, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}
	return scope, nil
}
