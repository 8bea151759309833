package domain

import (
	"errors"
	"fmt"
)

// Role is the coarse permission tag carried by every user and session token.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// DefaultRole is assigned when registration does not name one.
const DefaultRole = RoleUser

var ErrUnknownRole = errors.New("domain: unknown role")

// ParseRole maps a stored or requested role name onto the closed set of roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) IsAdmin() bool  { return r == RoleAdmin }
func (r Role) String() string { return string(r) }
