package http

import (
	"net/http"

	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	"github.com/aussiebroadwan/deskauth/internal/auth/service"
	"github.com/aussiebroadwan/deskauth/pkg/authsdk"
	"github.com/aussiebroadwan/deskauth/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleList returns every user.
//
//	@Summary		List users
//	@Description	Returns all users ordered by id. Password hashes are never included.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.ListUsersResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Not logged in"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Invalid token or not an admin"
//	@Router			/api/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]authsdk.User, len(users))
	for i, u := range users {
		out[i] = toUser(u)
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ListUsersResponse{Users: out})
}

// HandleDelete removes a user.
//
//	@Summary		Delete a user
//	@Description	Admins cannot delete their own account. Tokens already issued to the deleted user stay valid until they expire.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	authsdk.MessageResponse
//	@Failure		400			{object}	authsdk.ErrorResponse	"self_delete_forbidden"
//	@Failure		401			{object}	authsdk.ErrorResponse	"Not logged in"
//	@Failure		403			{object}	authsdk.ErrorResponse	"Invalid token or not an admin"
//	@Failure		404			{object}	authsdk.ErrorResponse	"User not found"
//	@Router			/api/users/{username} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	username := r.PathValue("username")
	if err := h.UserService.DeleteUser(r.Context(), caller, username); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "user " + username + " deleted"})
}

func toUser(u domain.User) authsdk.User {
	return authsdk.User{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}

func toSummary(id domain.Identity) authsdk.UserSummary {
	return authsdk.UserSummary{
		ID:       id.UserID,
		Username: id.Username,
		Role:     id.Role.String(),
	}
}
