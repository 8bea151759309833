package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Run("known roles", func(t *testing.T) {
		r, err := domain.ParseRole("admin")
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, r)
		require.True(t, r.IsAdmin())

		r, err = domain.ParseRole("user")
		require.NoError(t, err)
		require.Equal(t, domain.RoleUser, r)
		require.False(t, r.IsAdmin())
	})

	t.Run("unknown or miscased roles are rejected", func(t *testing.T) {
		for _, s := range []string{"", "Admin", "root", "admin "} {
			_, err := domain.ParseRole(s)
			require.ErrorIs(t, err, domain.ErrUnknownRole, "role %q", s)
		}
	})

	t.Run("valid", func(t *testing.T) {
		require.True(t, domain.RoleUser.Valid())
		require.False(t, domain.Role("superuser").Valid())
	})
}

func TestUserIdentity(t *testing.T) {
	u := domain.User{ID: 7, Username: "alice", PasswordHash: "$2b$10$x", Role: domain.RoleUser}
	require.Equal(t, domain.Identity{UserID: 7, Username: "alice", Role: domain.RoleUser}, u.Identity())
}
