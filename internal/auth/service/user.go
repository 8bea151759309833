package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	"github.com/aussiebroadwan/deskauth/internal/auth/store"
	"github.com/aussiebroadwan/deskauth/pkg/slogx"
)

// RegisterRequest describes a new account. An empty Role means
// domain.DefaultRole.
type RegisterRequest struct {
	Username string
	Password string
	Role     string
}

type UserService struct {
	Store  store.Store
	Hasher PasswordHasher
}

// Register creates a user. Callers are expected to have checked that the
// requester is an admin.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if err := validateUsername(req.Username); err != nil {
		return domain.User{}, err
	}
	if err := validatePassword("password", req.Password); err != nil {
		return domain.User{}, err
	}

	role := domain.DefaultRole
	if req.Role != "" {
		r, err := domain.ParseRole(req.Role)
		if err != nil {
			return domain.User{}, ErrInvalidRole
		}
		role = r
	}

	hash, err := hashPassword(ctx, s.Hasher, "password", req.Password)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.Store.Users().CreateUser(ctx, domain.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         role,
	})
	if errors.Is(err, store.ErrDuplicateUsername) {
		return domain.User{}, ErrDuplicateUsername
	}
	if err != nil {
		l.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	l.Info("user registered", slog.Int64("user_id", u.ID), slog.String("username", u.Username), slog.String("role", u.Role.String()))
	return u, nil
}

// ListUsers returns every user ordered by id.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list users", slog.Any("error", err))
		return nil, err
	}
	return users, nil
}

// DeleteUser removes username. Nobody may delete their own account, which
// also keeps the last admin from locking everyone out by accident.
func (s *UserService) DeleteUser(ctx context.Context, caller domain.Identity, username string) error {
	l := slogx.FromContext(ctx)

	if username == "" {
		return ErrInvalidRequest
	}
	if username == caller.Username {
		return ErrSelfDeleteForbidden
	}

	err := s.Store.Users().DeleteUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		l.Error("failed to delete user", slog.Any("error", err))
		return err
	}

	l.Info("user deleted", slog.String("admin", caller.Username), slog.String("username", username))
	return nil
}
