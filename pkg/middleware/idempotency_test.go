package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"examslots/pkg/model"
)

func TestIdempotencyReplaysSuccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"attempt":%d}`, calls)
	})
	handler := Idempotency(store, "Idempotency-Key")(next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, rec.Code)
		}
		if rec.Body.String() != `{"attempt":1}` {
			t.Errorf("request %d: expected cached first attempt, got %s", i, rec.Body.String())
		}
	}

	if calls != 1 {
		t.Errorf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotencyDoesNotCacheFailures(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusConflict)
	})
	handler := Idempotency(store, "Idempotency-Key")(next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set("Idempotency-Key", "key-2")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Errorf("expected failures to be retried, handler ran %d times", calls)
	}
}

func TestIdempotencySkipsRequestsWithoutKey(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})
	handler := Idempotency(store, "Idempotency-Key")(next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Errorf("expected every keyless request to run, handler ran %d times", calls)
	}
}

func TestIdempotencyScopesCacheToPrincipal(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		principal, _ := PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"student":%q}`, principal.ID)
	})
	handler := Principal(testLogger())(Idempotency(store, "Idempotency-Key")(next))

	// Two students reuse the same key; each must get their own response,
	// never a replay of the other's.
	for _, studentID := range []string{"student-1", "student-2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set(PrincipalIDHeader, studentID)
		req.Header.Set(PrincipalRoleHeader, model.RoleStudent)
		req.Header.Set("Idempotency-Key", "shared-key")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		want := fmt.Sprintf(`{"student":%q}`, studentID)
		if rec.Body.String() != want {
			t.Errorf("student %s: expected own response %s, got %s", studentID, want, rec.Body.String())
		}
	}

	if calls != 2 {
		t.Errorf("expected handler to run once per principal, ran %d times", calls)
	}
}

func TestStoreExpiresEntries(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	defer store.Stop()

	store.Set("key", &CachedResponse{StatusCode: 201})
	if _, ok := store.Get("key"); !ok {
		t.Fatal("expected fresh entry to be found")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get("key"); ok {
		t.Error("expected entry to expire")
	}
}
