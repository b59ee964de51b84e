package database

import (
	"context"
)

type contextKey string

const (
	// ScopeKey is the context key for storing the active connection scope.
	ScopeKey contextKey = "dbScope"
)

// Scope is the connection (or transaction) repositories should run against,
// together with the dialect needed to phrase their SQL.
type Scope struct {
	Conn    Querier
	Dialect *Dialect
}

// GetScope retrieves the active scope from context.
// Returns nil and false if not present.
func GetScope(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(ScopeKey).(*Scope)
	return scope, ok
}

// SetScope stores the scope in context.
func SetScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, ScopeKey, scope)
}
