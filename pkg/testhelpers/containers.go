package testhelpers

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/config"
	"github.com/grocerydesk/grocery-console/pkg/database"
)

// Images used for integration tests.
const (
	PostgresTestImage  = "postgres:16-alpine"
	MySQLTestImage     = "mysql:8.4"
	SQLServerTestImage = "mcr.microsoft.com/mssql/server:2022-latest"
)

const testPassword = "Grocery_test_Passw0rd"

// TestDB holds a shared database container with migrations applied.
type TestDB struct {
	Container testcontainers.Container
	Config    *config.DatabaseConfig
}

// engine describes how to start one database server in a container.
type engine struct {
	image   string
	port    nat.Port
	env     map[string]string
	wait    wait.Strategy
	timeout time.Duration
	config  func(host string, port int) *config.DatabaseConfig
}

var engines = map[string]engine{
	"postgres": {
		image: PostgresTestImage,
		port:  "5432",
		env: map[string]string{
			"POSTGRES_DB":       "grocery_store",
			"POSTGRES_USER":     "grocery",
			"POSTGRES_PASSWORD": testPassword,
		},
		wait:    wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		timeout: 60 * time.Second,
		config: func(host string, port int) *config.DatabaseConfig {
			return &config.DatabaseConfig{
				Driver: "postgres", Host: host, Port: port,
				User: "grocery", Password: testPassword, Name: "grocery_store", SSLMode: "disable",
			}
		},
	},
	"mysql": {
		image: MySQLTestImage,
		port:  "3306",
		env: map[string]string{
			"MYSQL_DATABASE":      "grocery_store",
			"MYSQL_USER":          "grocery",
			"MYSQL_PASSWORD":      testPassword,
			"MYSQL_ROOT_PASSWORD": testPassword,
		},
		// The init phase runs a server without networking first.
		wait:    wait.ForLog("port: 3306  MySQL Community Server"),
		timeout: 120 * time.Second,
		config: func(host string, port int) *config.DatabaseConfig {
			return &config.DatabaseConfig{
				Driver: "mysql", Host: host, Port: port,
				User: "grocery", Password: testPassword, Name: "grocery_store",
			}
		},
	},
	"sqlserver": {
		image: SQLServerTestImage,
		port:  "1433",
		env: map[string]string{
			"ACCEPT_EULA":       "Y",
			"MSSQL_SA_PASSWORD": testPassword,
		},
		wait:    wait.ForLog("SQL Server is now ready for client connections"),
		timeout: 180 * time.Second,
		config: func(host string, port int) *config.DatabaseConfig {
			return &config.DatabaseConfig{
				Driver: "sqlserver", Host: host, Port: port,
				User: "sa", Password: testPassword, Name: "master", SSLMode: "disable",
			}
		},
	},
}

// EngineDrivers lists the server engines available to integration tests.
func EngineDrivers() []string {
	return []string{"postgres", "mysql", "sqlserver"}
}

type sharedDB struct {
	once sync.Once
	db   *TestDB
	err  error
}

var (
	sharedMu  sync.Mutex
	sharedDBs = make(map[string]*sharedDB)
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()
	return GetEngineTestDB(t, "postgres")
}

// GetEngineTestDB returns a shared, migrated container for driver. Tests that
// need an empty store call ResetStore first.
func GetEngineTestDB(t *testing.T, driver string) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	e, ok := engines[driver]
	if !ok {
		t.Fatalf("No test container for driver %q", driver)
	}

	sharedMu.Lock()
	s, ok := sharedDBs[driver]
	if !ok {
		s = &sharedDB{}
		sharedDBs[driver] = s
	}
	sharedMu.Unlock()

	s.once.Do(func() {
		s.db, s.err = setupTestDB(e)
	})
	if s.err != nil {
		t.Fatalf("Failed to setup %s test database: %v", driver, s.err)
	}

	return s.db
}

func setupTestDB(e engine) (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        e.image,
		ExposedPorts: []string{string(e.port) + "/tcp"},
		Env:          e.env,
		WaitingFor:   withTimeout(e.wait, e.timeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, e.port)
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	portNum, err := strconv.Atoi(port.Port())
	if err != nil {
		return nil, fmt.Errorf("failed to parse container port: %w", err)
	}

	cfg := e.config(host, portNum)
	if err := database.RunMigrations(ctx, cfg, zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container: container,
		Config:    cfg,
	}, nil
}

func withTimeout(s wait.Strategy, timeout time.Duration) wait.Strategy {
	if l, ok := s.(*wait.LogStrategy); ok {
		return l.WithStartupTimeout(timeout)
	}
	return s
}

// ResetStore deletes every row from the store tables, children first.
func ResetStore(t *testing.T, cfg *config.DatabaseConfig) {
	t.Helper()

	err := database.WithConnection(context.Background(), cfg, zap.NewNop(), func(ctx context.Context, db *database.DB) error {
		for _, table := range []string{"order_details", "orders", "products", "customers", "suppliers"} {
			if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to reset store: %v", err)
	}
}
