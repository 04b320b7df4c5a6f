package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"examslots/pkg/logger"
	"examslots/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func TestPrincipalInjectsIdentity(t *testing.T) {
	var got model.Principal
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = PrincipalFrom(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/mine", nil)
	req.Header.Set(PrincipalIDHeader, "student-1")
	req.Header.Set(PrincipalRoleHeader, model.RoleStudent)
	rec := httptest.NewRecorder()

	Principal(testLogger())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !found {
		t.Fatal("expected principal in context")
	}
	if got.ID != "student-1" || got.Role != model.RoleStudent {
		t.Errorf("unexpected principal: %+v", got)
	}
}

func TestPrincipalRejectsMissingHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a principal")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/mine", nil)
	rec := httptest.NewRecorder()

	Principal(testLogger())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPrincipalRejectsUnknownRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with an unknown role")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/slots", nil)
	req.Header.Set(PrincipalIDHeader, "user-1")
	req.Header.Set(PrincipalRoleHeader, "superuser")
	rec := httptest.NewRecorder()

	Principal(testLogger())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPrincipalFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := PrincipalFrom(req.Context()); ok {
		t.Error("expected no principal in a bare context")
	}
}
