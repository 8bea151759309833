package jwtx

import (
	"errors"
	"strconv"
	"time"

	"github.com/aussiebroadwan/deskauth/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is how long a session token stays valid. There is no
// refresh flow, so this is also the longest a user stays logged in.
const DefaultSessionTTL = 12 * time.Hour

// Claims are the session-token claims. The custom id/username/role fields
// keep the payload shape the browser app already decodes.
type Claims struct {
	jwt.RegisteredClaims

	// UserID duplicates sub as a number.
	UserID int64 `json:"id"`

	Username string `json:"username"`

	// Role is "user" or "admin"; the service layer parses it.
	Role string `json:"role"`
}

// NewSessionClaims builds minimally-correct claims.
func NewSessionClaims(
	userID int64,
	username, role string,
	issuer string,
	ttl time.Duration,
	now time.Time,
) Claims {
	now = now.UTC()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.NewAt(now).String(),
		},
		UserID:   userID,
		Username: username,
		Role:     role,
	}
}

// Validate is called by the jwt parser after the registered claims pass.
func (c Claims) Validate() error {
	if c.UserID <= 0 {
		return errors.New("jwtx: missing id claim")
	}
	if c.Subject != strconv.FormatInt(c.UserID, 10) {
		return errors.New("jwtx: sub does not match id")
	}
	if c.Username == "" {
		return errors.New("jwtx: missing username claim")
	}
	if c.Role == "" {
		return errors.New("jwtx: missing role claim")
	}
	if _, err := idx.Parse(c.ID); err != nil {
		return errors.New("jwtx: jti is not a ulid")
	}
	return nil
}
