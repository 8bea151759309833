package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/deskauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestInvalidCredentials verifies a wrong password and an unknown user are
// indistinguishable to the caller.
func TestInvalidCredentials(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t))
	bootstrapService(t, client)

	_, err := client.Login(t.Context(), adminUsername, "wrong-password")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
	wrongPassword := err.Error()

	_, err = client.Login(t.Context(), "ghost", "wrong-password")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
	require.Equal(t, wrongPassword, err.Error())
}

// TestInvalidAccessToken verifies protected routes reject bad bearer tokens.
func TestInvalidAccessToken(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t))
	bootstrapService(t, client)

	_, err := client.NewSession("not-a-jwt").ListUsers(t.Context())
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)

	_, err = client.NewSession("").ListUsers(t.Context())
	require.ErrorIs(t, err, authsdk.ErrUnauthenticated)
}

// TestNonAdminCannotAdminister verifies admin routes reject the user role.
func TestNonAdminCannotAdminister(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t))
	admin := bootstrapService(t, client)
	bob := registerUser(t, client, admin, "bob", "BobPassword1", "user")

	_, err := bob.ListUsers(t.Context())
	require.ErrorIs(t, err, authsdk.ErrForbidden)

	_, err = bob.Register(t.Context(), authsdk.RegisterRequest{Username: "eve", Password: "EvePassword1"})
	require.ErrorIs(t, err, authsdk.ErrForbidden)

	err = bob.DeleteUser(t.Context(), adminUsername)
	require.ErrorIs(t, err, authsdk.ErrForbidden)

	err = bob.ResetPassword(t.Context(), adminUsername, "Hijacked1")
	require.ErrorIs(t, err, authsdk.ErrForbidden)

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
