package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "examslots/pkg/errors"
	"examslots/pkg/logger"
	"examslots/pkg/middleware"
	"examslots/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	reserveFn  func(ctx context.Context, studentID string, req *model.ReserveRequest) (*model.Booking, error)
	cancelFn   func(ctx context.Context, bookingID string, actor model.Principal) error
	listMineFn func(ctx context.Context, studentID string) ([]*model.BookingWithSlot, error)
}

func (m *mockBookingService) Reserve(ctx context.Context, studentID string, req *model.ReserveRequest) (*model.Booking, error) {
	if m.reserveFn != nil {
		return m.reserveFn(ctx, studentID, req)
	}
	return &model.Booking{ID: "507f1f77bcf86cd799439022"}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, bookingID string, actor model.Principal) error {
	if m.cancelFn != nil {
		return m.cancelFn(ctx, bookingID, actor)
	}
	return nil
}

func (m *mockBookingService) ListMine(ctx context.Context, studentID string) ([]*model.BookingWithSlot, error) {
	if m.listMineFn != nil {
		return m.listMineFn(ctx, studentID)
	}
	return nil, nil
}

func newTestRouter(svc *mockBookingService) http.Handler {
	log := logger.New(logger.Config{Output: io.Discard})
	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return middleware.Principal(log)(router)
}

func doRequest(handler http.Handler, method, path, body, principalID, role string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if principalID != "" {
		req.Header.Set(middleware.PrincipalIDHeader, principalID)
		req.Header.Set(middleware.PrincipalRoleHeader, role)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestReserveEndpoint(t *testing.T) {
	var gotStudent string
	svc := &mockBookingService{
		reserveFn: func(ctx context.Context, studentID string, req *model.ReserveRequest) (*model.Booking, error) {
			gotStudent = studentID
			return &model.Booking{ID: "507f1f77bcf86cd799439022", StudentID: studentID, ExamID: req.ExamID}, nil
		},
	}
	router := newTestRouter(svc)

	body := `{"slot_id":"507f1f77bcf86cd799439011","exam_id":"math-101","request_id":"req-1"}`
	rec := doRequest(router, http.MethodPost, "/api/v1/bookings", body, "student-1", model.RoleStudent)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotStudent != "student-1" {
		t.Errorf("expected student from principal header, got %q", gotStudent)
	}
}

func TestReserveRejectsAdmins(t *testing.T) {
	router := newTestRouter(&mockBookingService{
		reserveFn: func(ctx context.Context, studentID string, req *model.ReserveRequest) (*model.Booking, error) {
			t.Error("service must not be called for admins")
			return nil, nil
		},
	})

	body := `{"slot_id":"507f1f77bcf86cd799439011","exam_id":"math-101","request_id":"req-1"}`
	rec := doRequest(router, http.MethodPost, "/api/v1/bookings", body, "admin-1", model.RoleAdmin)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestReserveRequiresPrincipal(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	rec := doRequest(router, http.MethodPost, "/api/v1/bookings", `{}`, "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestReserveMapsDomainError(t *testing.T) {
	router := newTestRouter(&mockBookingService{
		reserveFn: func(ctx context.Context, studentID string, req *model.ReserveRequest) (*model.Booking, error) {
			return nil, apperrors.SlotUnavailable("Slot is full or disabled")
		},
	})

	body := `{"slot_id":"507f1f77bcf86cd799439011","exam_id":"math-101","request_id":"req-1"}`
	rec := doRequest(router, http.MethodPost, "/api/v1/bookings", body, "student-1", model.RoleStudent)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != apperrors.CodeSlotUnavailable {
		t.Errorf("expected code %s, got %s", apperrors.CodeSlotUnavailable, resp.Code)
	}
}

func TestReserveRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	rec := doRequest(router, http.MethodPost, "/api/v1/bookings", `{not json`, "student-1", model.RoleStudent)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCancelEndpoint(t *testing.T) {
	var gotID string
	var gotActor model.Principal
	router := newTestRouter(&mockBookingService{
		cancelFn: func(ctx context.Context, bookingID string, actor model.Principal) error {
			gotID = bookingID
			gotActor = actor
			return nil
		},
	})

	rec := doRequest(router, http.MethodDelete, "/api/v1/bookings/id/507f1f77bcf86cd799439022", "", "student-1", model.RoleStudent)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotID != "507f1f77bcf86cd799439022" {
		t.Errorf("expected booking ID from path, got %q", gotID)
	}
	if gotActor.Role != model.RoleStudent {
		t.Errorf("expected student actor, got %+v", gotActor)
	}
}

func TestAdminCancelRoute(t *testing.T) {
	var gotActor model.Principal
	router := newTestRouter(&mockBookingService{
		cancelFn: func(ctx context.Context, bookingID string, actor model.Principal) error {
			gotActor = actor
			return nil
		},
	})

	rec := doRequest(router, http.MethodDelete, "/api/v1/admin/bookings/id/507f1f77bcf86cd799439022", "", "admin-1", model.RoleAdmin)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotActor.Role != model.RoleAdmin {
		t.Errorf("expected admin actor, got %+v", gotActor)
	}
}

func TestListMineEndpoint(t *testing.T) {
	router := newTestRouter(&mockBookingService{
		listMineFn: func(ctx context.Context, studentID string) ([]*model.BookingWithSlot, error) {
			return []*model.BookingWithSlot{
				{Booking: &model.Booking{ID: "507f1f77bcf86cd799439022", StudentID: studentID}},
			}, nil
		},
	})

	rec := doRequest(router, http.MethodGet, "/api/v1/bookings/mine", "", "student-1", model.RoleStudent)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "507f1f77bcf86cd799439022") {
		t.Errorf("expected booking in response, got %s", rec.Body.String())
	}
}
