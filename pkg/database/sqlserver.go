package database

import (
	"database/sql"
	"fmt"
	"net/url"

	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratesqlserver "github.com/golang-migrate/migrate/v4/database/sqlserver"
	_ "github.com/microsoft/go-mssqldb" // registers the "sqlserver" driver

	"github.com/grocerydesk/grocery-console/pkg/config"
)

func init() {
	Register(&Dialect{
		Name:        "sqlserver",
		DisplayName: "Microsoft SQL Server",
		DriverName:  "sqlserver",
		DefaultPort: 1433,
		BuildDSN:    sqlserverDSN,
		Placeholder: atPPlaceholder,
		DateExpr:    castAsDate,
		IDStrategy:  IDOutputInserted,
		MigrateDriver: func(db *sql.DB) (migratedb.Driver, error) {
			return migratesqlserver.WithInstance(db, &migratesqlserver.Config{})
		},
	})
}

func sqlserverDSN(cfg *config.DatabaseConfig) (string, error) {
	port := cfg.Port
	if port == 0 {
		port = 1433
	}

	query := url.Values{}
	query.Add("database", cfg.Name)
	// SSLMode "disable" maps to an unencrypted session; anything else encrypts.
	if cfg.SSLMode == "disable" {
		query.Add("encrypt", "disable")
	} else {
		query.Add("encrypt", "true")
		query.Add("TrustServerCertificate", "true")
	}

	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		port,
		query.Encode(),
	), nil
}
