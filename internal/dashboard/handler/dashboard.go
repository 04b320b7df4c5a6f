package handler

import (
	"net/http"

	"examslots/internal/dashboard/service"
	apperrors "examslots/pkg/errors"
	"examslots/pkg/httputil"
	"examslots/pkg/logger"
	"examslots/pkg/middleware"
	"examslots/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type DashboardHandler struct {
	service service.DashboardService
	log     *logger.Logger
}

func NewDashboardHandler(service service.DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		log:     log,
	}
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, ok := h.requireRole(w, r, "Admin", model.RoleAdmin); !ok {
		return
	}

	stats, err := h.service.AdminStats(r.Context())
	if err != nil {
		h.writeError(w, "Admin", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Admin", "error", err)
	}
}

func (h *DashboardHandler) Student(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.requireRole(w, r, "Student", model.RoleStudent)
	if !ok {
		return
	}

	stats, err := h.service.StudentStats(r.Context(), principal.ID)
	if err != nil {
		h.writeError(w, "Student", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Student", "error", err)
	}
}

func (h *DashboardHandler) StudentActivity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.requireRole(w, r, "StudentActivity", model.RoleStudent)
	if !ok {
		return
	}

	entries, err := h.service.StudentActivity(r.Context(), principal.ID)
	if err != nil {
		h.writeError(w, "StudentActivity", err)
		return
	}

	if err := httputil.WriteSuccess(w, entries); err != nil {
		h.log.Error("failed to write success response", "handler", "StudentActivity", "error", err)
	}
}

func (h *DashboardHandler) requireRole(w http.ResponseWriter, r *http.Request, handler, role string) (model.Principal, bool) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Missing principal"))
		return model.Principal{}, false
	}
	if principal.Role != role {
		h.writeError(w, handler, apperrors.Forbidden("Insufficient role for this dashboard"))
		return model.Principal{}, false
	}
	return principal, true
}

func (h *DashboardHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *DashboardHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/dashboard/admin", h.Admin)
	router.GET("/api/v1/dashboard/student", h.Student)
	router.GET("/api/v1/dashboard/student/activity", h.StudentActivity)
}
