package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	migratedb "github.com/golang-migrate/migrate/v4/database"

	"github.com/grocerydesk/grocery-console/pkg/config"
)

// IDStrategy describes how a dialect hands back the key of a freshly inserted row.
type IDStrategy int

const (
	// IDReturning appends "RETURNING <col>" to the INSERT.
	IDReturning IDStrategy = iota
	// IDOutputInserted places "OUTPUT INSERTED.<col>" before VALUES.
	IDOutputInserted
	// IDLastInsertID uses sql.Result.LastInsertId.
	IDLastInsertID
)

// Dialect captures everything that differs between the supported stores.
// Queries are written once with "?" placeholders and rebound per dialect.
type Dialect struct {
	Name        string // "sqlite", "postgres", "mysql", "sqlserver"
	DisplayName string
	DriverName  string // database/sql driver name
	DefaultPort int    // 0 for file-based stores

	// BuildDSN turns the configured database section into a driver connection string.
	BuildDSN func(cfg *config.DatabaseConfig) (string, error)

	// Placeholder returns the n-th (1-based) bind parameter marker.
	Placeholder func(n int) string

	// DateExpr truncates a timestamp column to its calendar date.
	DateExpr func(col string) string

	IDStrategy IDStrategy

	// MigrateDriver wraps an open database for golang-migrate.
	MigrateDriver func(db *sql.DB) (migratedb.Driver, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Dialect)
)

// Register is called by each dialect's init() function.
func Register(d *Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Name] = d
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (*Dialect, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	d, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", name)
	}
	return d, nil
}

// RegisteredDialects returns the names of all compiled-in dialects, sorted.
func RegisteredDialects() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rebind rewrites "?" placeholders into the dialect's native form.
func (d *Dialect) Rebind(query string) string {
	if d.Placeholder == nil {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// InsertReturningID runs an INSERT written with "?" placeholders and returns the
// generated value of idColumn.
func (d *Dialect) InsertReturningID(ctx context.Context, q Querier, query, idColumn string, args ...any) (int64, error) {
	var id int64

	switch d.IDStrategy {
	case IDReturning:
		err := q.QueryRowContext(ctx, d.Rebind(query+" RETURNING "+idColumn), args...).Scan(&id)
		if err != nil {
			return 0, err
		}
	case IDOutputInserted:
		rewritten, err := outputInserted(query, idColumn)
		if err != nil {
			return 0, err
		}
		if err := q.QueryRowContext(ctx, d.Rebind(rewritten), args...).Scan(&id); err != nil {
			return 0, err
		}
	case IDLastInsertID:
		res, err := q.ExecContext(ctx, d.Rebind(query), args...)
		if err != nil {
			return 0, err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read last insert id: %w", err)
		}
	default:
		return 0, fmt.Errorf("unknown id strategy %d", d.IDStrategy)
	}

	return id, nil
}

// valuesKeyword matches the VALUES keyword with whatever whitespace precedes it.
var valuesKeyword = regexp.MustCompile(`(?i)\sVALUES\b`)

// outputInserted places "OUTPUT INSERTED.<idColumn>" in front of the VALUES
// clause of an INSERT.
func outputInserted(query, idColumn string) (string, error) {
	loc := valuesKeyword.FindStringIndex(query)
	if loc == nil {
		return "", fmt.Errorf("insert statement has no VALUES clause")
	}
	return query[:loc[0]] + " OUTPUT INSERTED." + idColumn + query[loc[0]:], nil
}

func dollarPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func atPPlaceholder(n int) string {
	return "@p" + strconv.Itoa(n)
}

func dateFunc(col string) string {
	return "DATE(" + col + ")"
}

func castAsDate(col string) string {
	return "CAST(" + col + " AS DATE)"
}
