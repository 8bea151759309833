package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/deskauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestUserLifecycle walks a user from registration to deletion.
func TestUserLifecycle(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t))
	admin := bootstrapService(t, client)

	alice := registerUser(t, client, admin, "alice", "AlicePassword1", "")
	require.Equal(t, "user", alice.User().Role)

	require.NoError(t, alice.ChangePassword(t.Context(), "AlicePassword1", "AlicePassword2"))

	_, err := client.Login(t.Context(), "alice", "AlicePassword1")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
	performLogin(t, client, "alice", "AlicePassword2")

	err = alice.ChangePassword(t.Context(), "wrong", "AlicePassword3")
	require.ErrorIs(t, err, authsdk.ErrInvalidOldPassword)

	users, err := admin.ListUsers(t.Context())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, adminUsername, users[0].Username)
	require.Equal(t, "alice", users[1].Username)

	require.NoError(t, admin.DeleteUser(t.Context(), "alice"))

	_, err = client.Login(t.Context(), "alice", "AlicePassword2")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	err = admin.DeleteUser(t.Context(), "alice")
	require.ErrorIs(t, err, authsdk.ErrNotFound)
}

// TestRegisterValidation verifies duplicate usernames and unknown roles.
func TestRegisterValidation(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t))
	admin := bootstrapService(t, client)

	_, err := admin.Register(t.Context(), authsdk.RegisterRequest{Username: adminUsername, Password: "x"})
	require.ErrorIs(t, err, authsdk.ErrDuplicateUsername)

	_, err = admin.Register(t.Context(), authsdk.RegisterRequest{Username: "carol", Password: "x", Role: "superuser"})
	require.ErrorIs(t, err, authsdk.ErrInvalidRole)

	_, err = admin.Register(t.Context(), authsdk.RegisterRequest{Username: "carol"})
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)
}

// TestAdminSafeguards verifies an admin can reset others but not delete
// themselves.
func TestAdminSafeguards(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t))
	admin := bootstrapService(t, client)
	registerUser(t, client, admin, "dave", "DavePassword1", "user")

	require.NoError(t, admin.ResetPassword(t.Context(), "dave", "DavePassword2"))
	performLogin(t, client, "dave", "DavePassword2")

	err := admin.ResetPassword(t.Context(), "ghost", "whatever")
	require.ErrorIs(t, err, authsdk.ErrNotFound)

	err = admin.DeleteUser(t.Context(), adminUsername)
	require.ErrorIs(t, err, authsdk.ErrSelfDeleteForbidden)
}
