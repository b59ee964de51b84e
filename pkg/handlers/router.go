package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/middleware"
)

// RouteRegistrar is implemented by every handler in this package.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// NewRouter builds the HTTP router with request logging and panic recovery,
// then registers each handler.
func NewRouter(logger *zap.Logger, registrars ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger))

	for _, reg := range registrars {
		reg.RegisterRoutes(r)
	}
	return r
}
