package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aussiebroadwan/deskauth/pkg/cryptox"
)

// PasswordHasher is satisfied by *cryptox.Hasher.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, encodedHash string) bool
	NeedsRehash(encodedHash string) bool
}

const maxUsernameLen = 255

func validateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: username is required", ErrInvalidRequest)
	case utf8.RuneCountInString(username) > maxUsernameLen:
		return fmt.Errorf("%w: username must be at most %d characters", ErrInvalidRequest, maxUsernameLen)
	case strings.TrimSpace(username) != username:
		return fmt.Errorf("%w: username must not start or end with whitespace", ErrInvalidRequest)
	case strings.IndexFunc(username, unicode.IsControl) >= 0:
		return fmt.Errorf("%w: username must not contain control characters", ErrInvalidRequest)
	}
	return nil
}

func validatePassword(field, password string) error {
	if password == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
	}
	return nil
}

// hashPassword maps hasher input errors onto ErrInvalidRequest so callers can
// tell a bad password from an internal failure.
func hashPassword(ctx context.Context, h PasswordHasher, field, password string) (string, error) {
	hash, err := h.Hash(ctx, password)
	if errors.Is(err, cryptox.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %s must be at most 72 bytes", ErrInvalidRequest, field)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
