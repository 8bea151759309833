package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/deskauth/internal/auth/service"
	"github.com/aussiebroadwan/deskauth/pkg/authsdk"
	"github.com/aussiebroadwan/deskauth/pkg/httpx"
)

type LoginHandler struct {
	AuthService *service.AuthService
	Metrics     *LoginMetrics
}

// ServeHTTP exchanges a username and password for a session token.
//
//	@Summary		Log in
//	@Description	Verifies the credentials and returns a signed session token valid for 12 hours. Unknown users and wrong passwords produce the same error.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing fields or malformed body"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid username or password"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Too many attempts"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.Metrics.observe(loginFailure)
		case !errors.Is(err, service.ErrInvalidRequest):
			h.Metrics.observe(loginError)
		}
		writeServiceError(w, r, err)
		return
	}
	h.Metrics.observe(loginSuccess)

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toSummary(res.User),
	})
}
