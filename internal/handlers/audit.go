package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/meridianx/backoffice/internal/models"
	pkghttp "github.com/meridianx/backoffice/pkg/http"
)

// AuditServiceInterface defines the interface for reading the audit trail
type AuditServiceInterface interface {
	List(ctx context.Context, adminID, action string, limit, offset int) ([]*models.AuditLog, error)
	Count(ctx context.Context) (int64, error)
}

// AuditHandler exposes the audit trail to super admins
type AuditHandler struct {
	service AuditServiceInterface
}

func NewAuditHandler(service AuditServiceInterface) *AuditHandler {
	return &AuditHandler{service: service}
}

// AuditListResponse is a page of audit entries
type AuditListResponse struct {
	Logs   []*models.AuditLog `json:"logs"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// List returns audit entries, newest first. Supports admin_id, action,
// limit, and offset query parameters.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := parseIntParam(query.Get("limit"), 50)
	offset := parseIntParam(query.Get("offset"), 0)

	logs, err := h.service.List(r.Context(), query.Get("admin_id"), query.Get("action"), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	total, err := h.service.Count(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, AuditListResponse{
		Logs:   logs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func parseIntParam(raw string, defaultVal int) int {
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return val
}
