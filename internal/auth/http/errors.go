package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	"github.com/aussiebroadwan/deskauth/internal/auth/service"
	"github.com/aussiebroadwan/deskauth/pkg/authsdk"
	"github.com/aussiebroadwan/deskauth/pkg/httpx"
	"github.com/aussiebroadwan/deskauth/pkg/slogx"
)

// writeServiceError maps a service error onto the JSON error envelope.
// Anything unrecognised is logged and answered with a generic 500 so driver
// text never reaches the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := http.StatusInternalServerError, authsdk.ErrorCodeServerError, "internal server error"

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		status, code, msg = http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, err.Error()
	case errors.Is(err, service.ErrInvalidRole):
		status, code, msg = http.StatusBadRequest, authsdk.ErrorCodeInvalidRole, "role must be one of: user, admin"
	case errors.Is(err, service.ErrDuplicateUsername):
		status, code, msg = http.StatusBadRequest, authsdk.ErrorCodeDuplicateUsername, err.Error()
	case errors.Is(err, service.ErrSelfDeleteForbidden):
		status, code, msg = http.StatusBadRequest, authsdk.ErrorCodeSelfDeleteForbidden, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status, code, msg = http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials, err.Error()
	case errors.Is(err, service.ErrInvalidOldPassword):
		status, code, msg = http.StatusUnauthorized, authsdk.ErrorCodeInvalidOldPassword, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, code, msg = http.StatusForbidden, authsdk.ErrorCodeForbidden, "admin access required"
	case errors.Is(err, service.ErrUserNotFound):
		status, code, msg = http.StatusNotFound, authsdk.ErrorCodeNotFound, err.Error()
	case errors.Is(err, service.ErrBootstrapDisabled):
		status, code, msg = http.StatusNotFound, authsdk.ErrorCodeNotFound, "bootstrap endpoint is not enabled"
	case errors.Is(err, service.ErrBootstrapUnauthorized):
		status, code, msg = http.StatusUnauthorized, authsdk.ErrorCodeInvalidBootstrapToken, "invalid bootstrap token"
	case errors.Is(err, service.ErrBootstrapAlready):
		status, code, msg = http.StatusConflict, authsdk.ErrorCodeAlreadyBootstrapped, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusServiceUnavailable, "request cancelled"
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", slog.Any("error", err))
	}

	httpx.WriteError(w, status, code, msg)
}

// decodeBody decodes a JSON request body, answering 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, err.Error())
		return false
	}
	return true
}

// identity returns the authenticated caller. Routes using it are always
// chained behind httpx.Authenticate.
func identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	l := slogx.FromContext(r.Context())

	hid, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		l.Error("handler reached without an authenticated identity")
		httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "internal server error")
		return domain.Identity{}, false
	}

	id, err := fromHTTPIdentity(hid)
	if err != nil {
		l.Error("authenticated identity carries an unknown role", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "internal server error")
		return domain.Identity{}, false
	}
	return id, true
}
