package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/deskauth/pkg/slogx"
)

// TokenVerifier turns a bearer token into the identity it asserts.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// expirer is implemented by verification errors that can tell an expired
// token apart from a forged or garbled one.
type expirer interface {
	Expired() bool
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the caller's identity in the request context. A missing token is
// 401; a token that fails verification is 403.
func Authenticate(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="deskauth"`)
				WriteError(w, http.StatusUnauthorized, ErrKindUnauthenticated, "not logged in")
				return
			}

			id, err := v.Verify(raw)
			if err != nil {
				desc := "invalid token"
				var exp expirer
				if errors.As(err, &exp) && exp.Expired() {
					desc = "token expired"
				}
				log.Warn("token verification failed", slog.Any("error", err))
				writeBearerError(w, desc)
				return
			}

			// Inject into context for downstream handlers.
			ctx = WithIdentity(ctx, id)
			ctx = slogx.With(ctx, "user", id.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from the Authorization header. The scheme is
// matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusForbidden, ErrKindInvalidToken, desc)
}
