package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/grocerydesk/grocery-console/pkg/config"
)

func init() {
	Register(&Dialect{
		Name:        "sqlite",
		DisplayName: "SQLite",
		DriverName:  "sqlite",
		BuildDSN:    sqliteDSN,
		DateExpr:    dateFunc,
		IDStrategy:  IDReturning,
		MigrateDriver: func(db *sql.DB) (migratedb.Driver, error) {
			return migratesqlite.WithInstance(db, &migratesqlite.Config{})
		},
	})
}

// sqliteDSN enables foreign keys and stores timestamps in the text form that
// SQLite's own date functions understand. The parent directory is created so a
// fresh checkout can open the default database path.
func sqliteDSN(cfg *config.DatabaseConfig) (string, error) {
	if cfg.Path == "" {
		return "", fmt.Errorf("database path is required for sqlite")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	query := url.Values{}
	query.Add("_pragma", "foreign_keys(1)")
	query.Add("_pragma", "busy_timeout(5000)")
	query.Add("_time_format", "sqlite")

	return "file:" + cfg.Path + "?" + query.Encode(), nil
}
