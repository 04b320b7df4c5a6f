package middleware

import (
	"context"
	"net/http"

	"examslots/pkg/logger"
	"examslots/pkg/model"
)

const (
	PrincipalIDHeader   = "X-Principal-Id"
	PrincipalRoleHeader = "X-Principal-Role"
)

const principalKey contextKey = "principal"

// Principal decodes the caller identity forwarded by the auth gateway.
// The service trusts these headers; authentication itself happens upstream.
func Principal(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(PrincipalIDHeader)
			role := r.Header.Get(PrincipalRoleHeader)

			if id == "" || (role != model.RoleAdmin && role != model.RoleStudent) {
				log.Warn("Request without valid principal headers",
					"method", r.Method,
					"path", r.URL.Path,
					"role", role,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, model.Principal{
				ID:   id,
				Role: role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFrom returns the caller identity stored by the Principal middleware.
func PrincipalFrom(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey).(model.Principal)
	return p, ok
}
