package handler

import (
	"encoding/json"
	"net/http"

	"examslots/internal/bookings/service"
	apperrors "examslots/pkg/errors"
	"examslots/pkg/httputil"
	"examslots/pkg/logger"
	"examslots/pkg/middleware"
	"examslots/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok || !principal.IsStudent() {
		h.writeError(w, "Reserve", apperrors.Forbidden("Only students can reserve slots"))
		return
	}

	var req model.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Reserve", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Reserve(r.Context(), principal.ID, &req)
	if err != nil {
		h.writeError(w, "Reserve", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Reserve", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, "Cancel", apperrors.Unauthorized("Missing principal"))
		return
	}

	if err := h.service.Cancel(r.Context(), ps.ByName("id"), principal); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok || !principal.IsStudent() {
		h.writeError(w, "ListMine", apperrors.Forbidden("Only students have personal bookings"))
		return
	}

	bookings, err := h.service.ListMine(r.Context(), principal.ID)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "ListMine", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Reserve)
	router.GET("/api/v1/bookings/mine", h.ListMine)
	router.DELETE("/api/v1/bookings/id/:id", h.Cancel)
	router.DELETE("/api/v1/admin/bookings/id/:id", h.Cancel)
}
