package http

import (
	"net/http"

	"github.com/aussiebroadwan/deskauth/internal/auth/service"
	"github.com/aussiebroadwan/deskauth/pkg/authsdk"
	"github.com/aussiebroadwan/deskauth/pkg/httpx"
)

type ChangePasswordHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP changes the caller's password, or another user's when the caller
// is an admin.
//
//	@Summary		Change password
//	@Description	Without "username" (or with the caller's own) the current password must be supplied. Admins may name another user to reset that user's password without it.
//	@Description	Tokens issued before the change stay valid until they expire.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Password change"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing fields"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Not logged in or wrong current password"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Invalid token, or non-admin naming another user"
//	@Failure		404		{object}	authsdk.ErrorResponse	"Target user not found"
//	@Router			/api/auth/change-password [post].
func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req authsdk.ChangePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.AuthService.ChangePassword(r.Context(), caller, service.ChangePasswordRequest{
		Username:    req.Username,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "password updated"})
}
