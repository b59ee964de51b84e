package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/config"
	"github.com/grocerydesk/grocery-console/pkg/logging"
	"github.com/grocerydesk/grocery-console/pkg/retry"
)

// Querier is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// DB is a single open connection to the grocery store plus its dialect.
type DB struct {
	*sql.DB
	Dialect *Dialect
}

// Open opens the configured store, limited to one connection, and verifies it
// with a ping. Transient connection failures are retried.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dialect, err := Lookup(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := dialect.BuildDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	sqlDB, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.DisplayName, err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = retry.DoIfRetryable(ctx, retry.DefaultConfig(), func() error {
		return sqlDB.PingContext(ctx)
	})
	if err != nil {
		sqlDB.Close()
		logger.Error("Database ping failed",
			zap.String("driver", dialect.Name),
			zap.String("dsn", logging.SanitizeConnectionString(dsn)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Debug("Opened database connection",
		zap.String("driver", dialect.Name),
		zap.String("dsn", logging.SanitizeConnectionString(dsn)))

	return &DB{DB: sqlDB, Dialect: dialect}, nil
}

// WithConnection opens a connection for the duration of fn and closes it on
// every exit path. The context handed to fn carries the connection scope.
func WithConnection(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger, fn func(ctx context.Context, db *DB) error) error {
	db, err := Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database connection", zap.Error(err))
		}
	}()

	return fn(SetScope(ctx, db.Scope()), db)
}

// Scope returns a scope running directly against the connection.
func (db *DB) Scope() *Scope {
	return &Scope{Conn: db.DB, Dialect: db.Dialect}
}

// WithTx runs fn inside a transaction, committing on success and rolling back
// on error or panic. The context handed to fn carries the transaction scope.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(SetScope(ctx, &Scope{Conn: tx, Dialect: db.Dialect})); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rebind is shorthand for db.Dialect.Rebind.
func (db *DB) Rebind(query string) string {
	return db.Dialect.Rebind(query)
}
