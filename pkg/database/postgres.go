package database

import (
	"database/sql"
	"fmt"
	"net/url"

	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/grocerydesk/grocery-console/pkg/config"
)

func init() {
	Register(&Dialect{
		Name:        "postgres",
		DisplayName: "PostgreSQL",
		DriverName:  "pgx",
		DefaultPort: 5432,
		BuildDSN:    postgresDSN,
		Placeholder: dollarPlaceholder,
		DateExpr:    castAsDate,
		IDStrategy:  IDReturning,
		MigrateDriver: func(db *sql.DB) (migratedb.Driver, error) {
			return migratepgx.WithInstance(db, &migratepgx.Config{})
		},
	})
}

func postgresDSN(cfg *config.DatabaseConfig) (string, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		port,
		url.QueryEscape(cfg.Name),
		sslMode,
	), nil
}
