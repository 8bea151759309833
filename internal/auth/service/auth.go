package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	"github.com/aussiebroadwan/deskauth/internal/auth/store"
	"github.com/aussiebroadwan/deskauth/pkg/slogx"
)

// LoginResult is a freshly issued session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.Identity
}

// ChangePasswordRequest carries a password change. Username is optional and
// defaults to the caller; only admins may name someone else.
type ChangePasswordRequest struct {
	Username    string
	OldPassword string
	NewPassword string
}

type AuthService struct {
	Store  store.Store
	Hasher PasswordHasher
	Tokens *TokenService

	dummyMu   sync.Mutex
	dummyHash string
}

// Login checks credentials and issues a session token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	if username == "" || password == "" {
		return LoginResult{}, fmt.Errorf("%w: username and password are required", ErrInvalidRequest)
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		// Spend the same hashing work as a real mismatch.
		if dummy, derr := s.dummy(ctx); derr == nil {
			s.Hasher.Verify(ctx, password, dummy)
		}
		l.Info("login failed", slog.String("username", username), slog.String("reason", "unknown user"))
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		l.Error("failed to load user", slog.Any("error", err))
		return LoginResult{}, err
	}

	if !s.Hasher.Verify(ctx, password, user.PasswordHash) {
		if ctx.Err() != nil {
			return LoginResult{}, ctx.Err()
		}
		l.Info("login failed", slog.String("username", username), slog.String("reason", "bad password"))
		return LoginResult{}, ErrInvalidCredentials
	}

	if s.Hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.Username, password)
	}

	id := user.Identity()
	token, expiresAt, err := s.Tokens.Issue(id)
	if err != nil {
		l.Error("failed to issue token", slog.Any("error", err))
		return LoginResult{}, err
	}

	l.Info("login succeeded", slog.String("username", id.Username), slog.String("role", id.Role.String()))
	return LoginResult{Token: token, ExpiresAt: expiresAt, User: id}, nil
}

// rehash upgrades a stored hash to the current parameters. Failure is logged
// and otherwise ignored; the old hash still verifies.
func (s *AuthService) rehash(ctx context.Context, username, password string) {
	l := slogx.FromContext(ctx)

	hash, err := s.Hasher.Hash(ctx, password)
	if err != nil {
		l.Warn("failed to rehash password", slog.Any("error", err))
		return
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, username, hash); err != nil {
		l.Warn("failed to store upgraded password hash", slog.Any("error", err))
		return
	}
	l.Info("upgraded password hash", slog.String("username", username))
}

func (s *AuthService) dummy(ctx context.Context) (string, error) {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash != "" {
		return s.dummyHash, nil
	}
	h, err := s.Hasher.Hash(ctx, "deskauth-timing-equaliser")
	if err != nil {
		return "", err
	}
	s.dummyHash = h
	return h, nil
}

// ChangePassword sets a new password. An admin naming another user resets
// that user's password without knowing the old one. Everyone else, admins
// included when changing their own, must present the current password.
// Sessions already issued stay valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, caller domain.Identity, req ChangePasswordRequest) error {
	l := slogx.FromContext(ctx)

	if err := validatePassword("newPassword", req.NewPassword); err != nil {
		return err
	}

	target := req.Username
	if target == "" {
		target = caller.Username
	}

	if target != caller.Username {
		if !caller.Role.IsAdmin() {
			l.Warn("non-admin attempted to change another user's password",
				slog.String("target", target))
			return ErrForbidden
		}
		return s.resetPassword(ctx, caller, target, req.NewPassword)
	}

	if err := validatePassword("oldPassword", req.OldPassword); err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, target)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		l.Error("failed to load user", slog.Any("error", err))
		return err
	}

	if !s.Hasher.Verify(ctx, req.OldPassword, user.PasswordHash) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.Info("password change rejected", slog.String("reason", "bad old password"))
		return ErrInvalidOldPassword
	}

	hash, err := hashPassword(ctx, s.Hasher, "newPassword", req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, target, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		l.Error("failed to update password", slog.Any("error", err))
		return err
	}

	l.Info("password changed", slog.String("username", target))
	return nil
}

func (s *AuthService) resetPassword(ctx context.Context, admin domain.Identity, target, password string) error {
	l := slogx.FromContext(ctx)

	hash, err := hashPassword(ctx, s.Hasher, "newPassword", password)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, target, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		l.Error("failed to reset password", slog.Any("error", err))
		return err
	}

	l.Info("password reset by admin", slog.String("admin", admin.Username), slog.String("target", target))
	return nil
}
