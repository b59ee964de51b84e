package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/config"
	"github.com/grocerydesk/grocery-console/pkg/database"
)

// ConnectFunc opens a connection for one operation and runs fn with the
// connection scope in ctx. The connection is closed when fn returns.
type ConnectFunc func(ctx context.Context, fn func(ctx context.Context, db *database.DB) error) error

// NewConnectFunc returns a ConnectFunc for the configured store.
func NewConnectFunc(cfg *config.DatabaseConfig, logger *zap.Logger) ConnectFunc {
	return func(ctx context.Context, fn func(ctx context.Context, db *database.DB) error) error {
		return database.WithConnection(ctx, cfg, logger, fn)
	}
}
