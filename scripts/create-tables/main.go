// create-tables applies the embedded schema migrations to the configured
// database. Running it again is a no-op once the schema is current.
//
// Usage: go run ./scripts/create-tables
//
// Database connection: config.yaml and DB_* environment variables, the same
// as the console.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/config"
	"github.com/grocerydesk/grocery-console/pkg/database"
	"github.com/grocerydesk/grocery-console/pkg/logging"
)

func main() {
	cfg, err := config.Load("script")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log.Level, cfg.IsDevelopment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := database.RunMigrations(context.Background(), &cfg.Database, logger); err != nil {
		logger.Error("Failed to create tables", zap.String("error", logging.SanitizeError(err)))
		os.Exit(1)
	}

	fmt.Printf("Tables created in %s database.\n", cfg.Database.Driver)
}
