package testhelpers

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/config"
	"github.com/grocerydesk/grocery-console/pkg/database"
)

// NewSQLiteConfig returns a database config for a fresh, migrated SQLite file
// inside the test's temp directory.
func NewSQLiteConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "grocery_store.db"),
	}
	if err := database.RunMigrations(context.Background(), cfg, zap.NewNop()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return cfg
}

// OpenSQLite opens a fresh migrated SQLite database and returns a context
// carrying its scope. The connection is closed when the test finishes.
func OpenSQLite(t *testing.T) (context.Context, *database.DB) {
	t.Helper()

	cfg := NewSQLiteConfig(t)
	db, err := database.Open(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return database.SetScope(context.Background(), db.Scope()), db
}
