package handler

import (
	"net/http"

	"examslots/internal/audit/service"
	apperrors "examslots/pkg/errors"
	"examslots/pkg/httputil"
	"examslots/pkg/logger"
	"examslots/pkg/middleware"
	"examslots/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AuditHandler struct {
	service service.AuditService
	log     *logger.Logger
}

func NewAuditHandler(service service.AuditService, log *logger.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		log:     log,
	}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, "List", apperrors.Unauthorized("Missing principal"))
		return
	}
	if !principal.IsAdmin() {
		h.writeError(w, "List", apperrors.Forbidden("Administrator role required"))
		return
	}

	query := r.URL.Query()
	filter := model.AuditFilter{
		StudentID: query.Get("student_id"),
		SlotID:    query.Get("slot_id"),
		Status:    query.Get("status"),
	}
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	entries, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, entries, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *AuditHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *AuditHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/audit", h.List)
}
