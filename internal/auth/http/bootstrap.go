package http

import (
	"net/http"

	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	"github.com/aussiebroadwan/deskauth/internal/auth/service"
	"github.com/aussiebroadwan/deskauth/pkg/authsdk"
	"github.com/aussiebroadwan/deskauth/pkg/httpx"
	"github.com/aussiebroadwan/deskauth/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the authentication system
//	@Description	Creates the first admin user. Only available when a bootstrap token is configured, and only while no users exist.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token"
//	@Param			request				body		authsdk.BootstrapRequest	true	"First administrator"
//	@Success		201					{object}	authsdk.UserResponse
//	@Failure		400					{object}	authsdk.ErrorResponse	"Invalid request body"
//	@Failure		401					{object}	authsdk.ErrorResponse	"Missing or invalid bootstrap token"
//	@Failure		404					{object}	authsdk.ErrorResponse	"Bootstrap not enabled"
//	@Failure		409					{object}	authsdk.ErrorResponse	"System already bootstrapped"
//	@Router			/api/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())
	l.Info("bootstrap requested")

	// Hide the endpoint entirely when disabled.
	if !h.BootstrapService.Enabled() {
		writeServiceError(w, r, service.ErrBootstrapDisabled)
		return
	}

	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeInvalidBootstrapToken,
			"bootstrap token is required in X-Bootstrap-Token header")
		return
	}

	var req authsdk.BootstrapRequest
	if !decodeBody(w, r, &req) {
		return
	}

	admin, err := h.BootstrapService.Bootstrap(r.Context(), token, domain.BootstrapData{
		AdminUsername: req.Username,
		AdminPassword: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.UserResponse{User: toUser(admin)})
}
