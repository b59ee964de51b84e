package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/migrations"
	"github.com/grocerydesk/grocery-console/pkg/config"
)

// RunMigrations applies the embedded migrations for the configured dialect.
// It is idempotent and safe to call multiple times - only pending migrations will be executed.
// The migrate instance owns its connection and closes it when done.
func RunMigrations(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) error {
	db, err := Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := db.Dialect.MigrateDriver(db.DB)
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, db.Dialect.Name)
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.Dialect.Name, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("Failed to close migration source", zap.Error(srcErr))
		}
		if dbErr != nil {
			logger.Warn("Failed to close migration database", zap.Error(dbErr))
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No migrations to apply (database up-to-date)",
			zap.String("driver", db.Dialect.Name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("Applied migrations successfully",
		zap.String("driver", db.Dialect.Name),
		zap.Uint("version", newVersion))
	return nil
}
