package handler

import (
	"encoding/json"
	"net/http"

	"examslots/internal/slots/service"
	apperrors "examslots/pkg/errors"
	"examslots/pkg/httputil"
	"examslots/pkg/logger"
	"examslots/pkg/middleware"
	"examslots/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SlotHandler struct {
	service service.SlotService
	log     *logger.Logger
}

func NewSlotHandler(service service.SlotService, log *logger.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log,
	}
}

func (h *SlotHandler) Generate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	admin, ok := h.requireAdmin(w, r, "Generate")
	if !ok {
		return
	}

	var req model.GenerateSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Generate", apperrors.InvalidInput("Invalid request body"))
		return
	}

	slots, err := h.service.Generate(r.Context(), admin.ID, &req)
	if err != nil {
		h.writeError(w, "Generate", err)
		return
	}

	if err := httputil.WriteCreated(w, slots); err != nil {
		h.log.Error("failed to write created response", "handler", "Generate", "error", err)
	}
}

func (h *SlotHandler) ListAvailable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	slots, err := h.service.ListAvailable(r.Context())
	if err != nil {
		h.writeError(w, "ListAvailable", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ListAvailable", "error", err)
	}
}

func (h *SlotHandler) ListOwned(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	admin, ok := h.requireAdmin(w, r, "ListOwned")
	if !ok {
		return
	}

	slots, err := h.service.ListOwned(r.Context(), admin.ID)
	if err != nil {
		h.writeError(w, "ListOwned", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ListOwned", "error", err)
	}
}

func (h *SlotHandler) Toggle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	admin, ok := h.requireAdmin(w, r, "Toggle")
	if !ok {
		return
	}

	slot, err := h.service.Toggle(r.Context(), admin.ID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Toggle", err)
		return
	}

	if err := httputil.WriteSuccess(w, slot); err != nil {
		h.log.Error("failed to write success response", "handler", "Toggle", "error", err)
	}
}

func (h *SlotHandler) Edit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	admin, ok := h.requireAdmin(w, r, "Edit")
	if !ok {
		return
	}

	var updates model.SlotUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Edit", apperrors.InvalidInput("Invalid request body"))
		return
	}

	slot, err := h.service.Edit(r.Context(), admin.ID, ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Edit", err)
		return
	}

	if err := httputil.WriteSuccess(w, slot); err != nil {
		h.log.Error("failed to write success response", "handler", "Edit", "error", err)
	}
}

func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	admin, ok := h.requireAdmin(w, r, "Delete")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), admin.ID, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SlotHandler) SlotBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	admin, ok := h.requireAdmin(w, r, "SlotBookings")
	if !ok {
		return
	}

	bookings, err := h.service.SlotBookings(r.Context(), admin.ID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "SlotBookings", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "SlotBookings", "error", err)
	}
}

func (h *SlotHandler) requireAdmin(w http.ResponseWriter, r *http.Request, handler string) (model.Principal, bool) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Missing principal"))
		return model.Principal{}, false
	}
	if !principal.IsAdmin() {
		h.writeError(w, handler, apperrors.Forbidden("Administrator role required"))
		return model.Principal{}, false
	}
	return principal, true
}

func (h *SlotHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *SlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/slots", h.Generate)
	router.GET("/api/v1/slots", h.ListOwned)
	router.GET("/api/v1/slots/available", h.ListAvailable)
	router.POST("/api/v1/slots/id/:id/toggle", h.Toggle)
	router.PATCH("/api/v1/slots/id/:id", h.Edit)
	router.DELETE("/api/v1/slots/id/:id", h.Delete)
	router.GET("/api/v1/slots/id/:id/bookings", h.SlotBookings)
}
