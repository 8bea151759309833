package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/deskauth/pkg/slogx"
)

// RequireRole admits only callers whose role is exactly role. It must be
// chained after Authenticate; a request without an identity is a wiring bug
// and is answered with 500 rather than let through.
func RequireRole(role string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				slogx.FromContext(r.Context()).Error("RequireRole reached without an authenticated identity",
					"required_role", role,
				)
				WriteError(w, http.StatusInternalServerError, ErrKindServerError, "internal server error")
				return
			}

			if id.Role != role {
				WriteError(w, http.StatusForbidden, ErrKindForbidden, role+" access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
