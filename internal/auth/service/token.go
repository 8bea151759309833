package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	"github.com/aussiebroadwan/deskauth/pkg/jwtx"
)

// VerifyErrorKind classifies why a session token was rejected.
type VerifyErrorKind int

const (
	VerifyMalformed VerifyErrorKind = iota + 1
	VerifyBadSignature
	VerifyExpired
)

func (k VerifyErrorKind) String() string {
	switch k {
	case VerifyMalformed:
		return "malformed"
	case VerifyBadSignature:
		return "bad signature"
	case VerifyExpired:
		return "expired"
	default:
		return fmt.Sprintf("VerifyErrorKind(%d)", int(k))
	}
}

// VerifyError is returned by TokenService.Verify for every rejected token.
type VerifyError struct {
	Kind VerifyErrorKind
	Err  error
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
}

func (e *VerifyError) Unwrap() error { return e.Err }

// Expired reports whether the token was well-formed and correctly signed but
// past its expiry.
func (e *VerifyError) Expired() bool { return e.Kind == VerifyExpired }

// TokenService issues and verifies stateless session tokens. Verification
// never touches the store, so a token stays valid until it expires even if
// the user is deleted or changes password.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration
	Now      func() time.Time
}

// NewTokenService builds an HS256 token service around secret. now may be nil.
func NewTokenService(secret []byte, issuer string, ttl time.Duration, now func() time.Time) (*TokenService, error) {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	signer, err := jwtx.NewSignerHS256(secret)
	if err != nil {
		return nil, err
	}
	verifier, err := jwtx.NewVerifierHS256(secret, issuer, jwtx.WithClock(now))
	if err != nil {
		return nil, err
	}

	return &TokenService{
		Signer:   signer,
		Verifier: verifier,
		Issuer:   issuer,
		TTL:      ttl,
		Now:      now,
	}, nil
}

// Issue signs a token for id, returning it with its expiry.
func (s *TokenService) Issue(id domain.Identity) (string, time.Time, error) {
	if id.UserID <= 0 || id.Username == "" || !id.Role.Valid() {
		return "", time.Time{}, fmt.Errorf("issue token: incomplete identity %+v", id)
	}

	claims := jwtx.NewSessionClaims(id.UserID, id.Username, id.Role.String(), s.Issuer, s.TTL, s.Now())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// Verify checks signature and expiry and returns the identity the token
// asserts. Failures are always *VerifyError.
func (s *TokenService) Verify(token string) (domain.Identity, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return domain.Identity{}, &VerifyError{Kind: classify(err), Err: err}
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Identity{}, &VerifyError{Kind: VerifyMalformed, Err: err}
	}

	return domain.Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     role,
	}, nil
}

func classify(err error) VerifyErrorKind {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return VerifyExpired
	case errors.Is(err, jwtx.ErrInvalidSig), errors.Is(err, jwtx.ErrAlgMismatch):
		return VerifyBadSignature
	default:
		return VerifyMalformed
	}
}
