// populate-test-data seeds an empty store with suppliers, products, customers
// and a year of random orders. The same seed produces the same data.
//
// Usage: go run ./scripts/populate-test-data [-seed=N] [-migrate=false]
//
// Flags:
//
//	-seed      random seed for generated orders (default: 1)
//	-migrate   apply schema migrations first (default: true)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/config"
	"github.com/grocerydesk/grocery-console/pkg/database"
	"github.com/grocerydesk/grocery-console/pkg/logging"
	"github.com/grocerydesk/grocery-console/pkg/repositories"
	"github.com/grocerydesk/grocery-console/pkg/services"
)

func main() {
	seed := flag.Uint64("seed", 1, "Random seed for generated orders")
	migrate := flag.Bool("migrate", true, "Apply schema migrations before seeding")
	flag.Parse()

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

	ctx := context.Background()
	if *migrate {
		if err := database.RunMigrations(ctx, &cfg.Database, logger); err != nil {
			logger.Error("Failed to apply migrations", zap.String("error", logging.SanitizeError(err)))
			os.Exit(1)
		}
	}

	store := services.NewStoreService(services.NewConnectFunc(&cfg.Database, logger),
		repositories.NewSupplierRepository(),
		repositories.NewProductRepository(),
		repositories.NewCustomerRepository(),
		repositories.NewOrderRepository(),
		logger)

	summary, err := store.PopulateTestData(ctx, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to populate test data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Inserted %d suppliers, %d products, %d customers, %d orders (%d order lines).\n",
		summary.Suppliers, summary.Products, summary.Customers, summary.Orders, summary.OrderDetails)
}
