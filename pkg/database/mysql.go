package database

import (
	"database/sql"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"

	"github.com/grocerydesk/grocery-console/pkg/config"
)

func init() {
	Register(&Dialect{
		Name:        "mysql",
		DisplayName: "MySQL",
		DriverName:  "mysql",
		DefaultPort: 3306,
		BuildDSN:    mysqlDSN,
		DateExpr:    dateFunc,
		IDStrategy:  IDLastInsertID,
		MigrateDriver: func(db *sql.DB) (migratedb.Driver, error) {
			return migratemysql.WithInstance(db, &migratemysql.Config{})
		},
	})
}

// mysqlDSN parses DATE/DATETIME into time.Time and allows the multi-statement
// migration files to run in a single Exec. RowsAffected counts matched rows,
// not changed rows, so an UPDATE that leaves a row as it was still finds it.
func mysqlDSN(cfg *config.DatabaseConfig) (string, error) {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.MultiStatements = true
	mc.ClientFoundRows = true

	return mc.FormatDSN(), nil
}
