package http

import (
	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	"github.com/aussiebroadwan/deskauth/internal/auth/service"
	"github.com/aussiebroadwan/deskauth/pkg/httpx"
)

// tokenVerifier lets httpx.Authenticate check session tokens without
// knowing the auth domain.
type tokenVerifier struct {
	tokens *service.TokenService
}

func (v tokenVerifier) Verify(token string) (httpx.Identity, error) {
	id, err := v.tokens.Verify(token)
	if err != nil {
		return httpx.Identity{}, err
	}
	return httpx.Identity{
		UserID:   id.UserID,
		Username: id.Username,
		Role:     id.Role.String(),
	}, nil
}

func (r *Router) authenticate() httpx.Middleware {
	return httpx.Authenticate(tokenVerifier{tokens: r.TokenService})
}

func requireRole(role domain.Role) httpx.Middleware {
	return httpx.RequireRole(role.String())
}

// fromHTTPIdentity converts the middleware identity back into the domain one.
func fromHTTPIdentity(id httpx.Identity) (domain.Identity, error) {
	role, err := domain.ParseRole(id.Role)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		UserID:   id.UserID,
		Username: id.Username,
		Role:     role,
	}, nil
}
