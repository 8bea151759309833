package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	"github.com/aussiebroadwan/deskauth/internal/auth/store"
	"github.com/aussiebroadwan/deskauth/pkg/cryptox"
	"github.com/aussiebroadwan/deskauth/pkg/slogx"
)

var (
	ErrBootstrapDisabled     = errors.New("bootstrap is disabled")
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

// BootstrapService creates the first administrator of an empty system,
// either from configuration at startup or through a token-guarded request.
type BootstrapService struct {
	Store  store.Store
	Hasher PasswordHasher
	Token  string // empty disables the HTTP endpoint
}

func (s *BootstrapService) Enabled() bool { return s.Token != "" }

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap checks token and creates the first admin.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if !s.Enabled() {
		return domain.User{}, ErrBootstrapDisabled
	}
	if !cryptox.TokensEqual(token, s.Token) {
		l.Warn("unauthorized bootstrap attempt", slog.String("token_fingerprint", cryptox.FingerprintToken(token)))
		return domain.User{}, ErrBootstrapUnauthorized
	}

	u, err := s.createFirstAdmin(ctx, req)
	if errors.Is(err, ErrBootstrapAlready) {
		l.Warn("attempted bootstrap on already-bootstrapped system")
	}
	return u, err
}

// SeedAdmin creates the first admin from configuration. It reports false,
// without error, when the system already has users.
func (s *BootstrapService) SeedAdmin(ctx context.Context, req domain.BootstrapData) (domain.User, bool, error) {
	u, err := s.createFirstAdmin(ctx, req)
	if errors.Is(err, ErrBootstrapAlready) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return u, true, nil
}

func (s *BootstrapService) createFirstAdmin(ctx context.Context, req domain.BootstrapData) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if err := validateUsername(req.AdminUsername); err != nil {
		return domain.User{}, err
	}
	if err := validatePassword("password", req.AdminPassword); err != nil {
		return domain.User{}, err
	}

	if done, err := s.IsBootstrapped(ctx); err != nil {
		return domain.User{}, err
	} else if done {
		return domain.User{}, ErrBootstrapAlready
	}

	// Hash outside the transaction; SQLite runs on a single connection.
	hash, err := hashPassword(ctx, s.Hasher, "password", req.AdminPassword)
	if err != nil {
		return domain.User{}, err
	}

	var admin domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}

		admin, err = tx.Users().CreateUser(ctx, domain.User{
			Username:     req.AdminUsername,
			PasswordHash: hash,
			Role:         domain.RoleAdmin,
		})
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrBootstrapAlready) {
			l.Error("failed to create admin user", slog.Any("error", err))
		}
		return domain.User{}, err
	}

	l.Info("bootstrap completed", slog.Int64("user_id", admin.ID), slog.String("username", admin.Username))
	return admin, nil
}
