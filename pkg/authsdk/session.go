package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Session is an authenticated handle on the service. Tokens cannot be
// refreshed; once expired the caller has to log in again.
type Session struct {
	client *SDKClient

	token     string
	expiresAt time.Time // zero when unknown
	user      UserSummary
}

// Token returns the bearer token, for callers that persist it.
func (s *Session) Token() string { return s.token }

// ExpiresAt is zero for sessions built with NewSession.
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// User is empty for sessions built with NewSession.
func (s *Session) User() UserSummary { return s.user }

func (s *Session) validToken() (string, error) {
	if !s.expiresAt.IsZero() && !time.Now().Before(s.expiresAt) {
		return "", ErrSessionExpired
	}
	return s.token, nil
}

// ============================================================================
// Self-service
// ============================================================================

// ChangePassword changes the session user's own password.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/auth/change-password", ChangePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// ============================================================================
// Administration (admin role required)
// ============================================================================

// ResetPassword sets another user's password without knowing the old one.
func (s *Session) ResetPassword(ctx context.Context, username, newPassword string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/auth/change-password", ChangePasswordRequest{
		Username:    username,
		NewPassword: newPassword,
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// Register creates a user.
func (s *Session) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/auth/register", req)
	if err != nil {
		return nil, err
	}

	var userResp UserResponse
	if err := decodeJSON(resp, &userResp, http.StatusCreated); err != nil {
		return nil, err
	}
	return &userResp.User, nil
}

// ListUsers returns every user ordered by id.
func (s *Session) ListUsers(ctx context.Context) ([]User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/users", nil)
	if err != nil {
		return nil, err
	}

	var listResp ListUsersResponse
	if err := decodeJSON(resp, &listResp, http.StatusOK); err != nil {
		return nil, err
	}
	return listResp.Users, nil
}

// DeleteUser removes username. Deleting the session's own account fails with
// ErrSelfDeleteForbidden.
func (s *Session) DeleteUser(ctx context.Context, username string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(username), nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}
