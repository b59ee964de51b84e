package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/config"
	"github.com/grocerydesk/grocery-console/pkg/logging"
)

// dbCheckTimeout bounds the database check done by /ping.
const dbCheckTimeout = 5 * time.Second

// DatabaseCheck reports whether the grocery database is reachable.
type DatabaseCheck func(ctx context.Context) error

// PingResponse describes the running service and its database.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Environment string `json:"environment"`
	Driver      string `json:"driver"`
	Database    string `json:"database"`
	Error       string `json:"error,omitempty"`
}

// HealthHandler serves liveness and readiness endpoints.
type HealthHandler struct {
	cfg     *config.Config
	checkDB DatabaseCheck
	logger  *zap.Logger
}

// NewHealthHandler creates a HealthHandler. A nil checkDB skips the
// database check.
func NewHealthHandler(cfg *config.Config, checkDB DatabaseCheck, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, checkDB: checkDB, logger: logger}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/ping", h.Ping)
}

// Health handles GET /health. It never touches the database.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping. An unreachable database yields 503 with status
// "degraded".
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "grocery-console",
		GoVersion:   runtime.Version(),
		Environment: h.cfg.Env,
		Driver:      h.cfg.Database.Driver,
		Database:    "unchecked",
	}
	status := http.StatusOK

	if h.checkDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), dbCheckTimeout)
		defer cancel()

		if err := h.checkDB(ctx); err != nil {
			h.logger.Warn("Database check failed", zap.String("error", logging.SanitizeError(err)))
			response.Status = "degraded"
			response.Database = "unreachable"
			response.Error = logging.SanitizeError(err)
			status = http.StatusServiceUnavailable
		} else {
			response.Database = "ok"
		}
	}

	if err := WriteJSON(w, status, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
