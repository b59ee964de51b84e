package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/screening"
)

// viewerTemplate is the path of the viewer page inside the templates FS.
const viewerTemplate = "templates/report_viewer.html"

// viewerPage is the data rendered into the viewer template.
type viewerPage struct {
	Title    string
	EmbedURL string
}

// ViewerHandler renders an embedded Power BI report.
type ViewerHandler struct {
	tmpl   *template.Template
	logger *zap.Logger
}

// NewViewerHandler parses the viewer template from templates.
func NewViewerHandler(templates fs.FS, logger *zap.Logger) (*ViewerHandler, error) {
	tmpl, err := template.ParseFS(templates, viewerTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse viewer template: %w", err)
	}
	return &ViewerHandler{tmpl: tmpl, logger: logger.Named("viewer")}, nil
}

// RegisterRoutes registers the viewer route on the router.
func (h *ViewerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/view_report/{embedURL}", h.ViewReport)
}

// ViewReport handles GET /view_report/{embedURL}. The path segment is the
// percent-encoded embed URL. Only http and https URLs are rendered.
func (h *ViewerHandler) ViewReport(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "embedURL")
	embedURL, err := url.PathUnescape(raw)
	if err != nil {
		h.badRequest(w, "invalid_embed_url", "embed URL is not valid percent-encoding")
		return
	}

	u, err := url.Parse(embedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		h.badRequest(w, "invalid_embed_url", "embed URL must be an absolute http or https URL")
		return
	}

	if finding := screening.CheckXSS("embed_url", embedURL); finding != nil {
		h.logger.Warn("Rejected embed URL", zap.String("embed_url", embedURL))
		h.badRequest(w, "rejected_embed_url", "embed URL contains disallowed content")
		return
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, viewerPage{Title: "Grocery Store Report", EmbedURL: u.String()}); err != nil {
		h.logger.Error("Failed to render viewer", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to render viewer"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *ViewerHandler) badRequest(w http.ResponseWriter, code, message string) {
	if err := ErrorResponse(w, http.StatusBadRequest, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
