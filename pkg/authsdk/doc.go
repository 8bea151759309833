/*
Package authsdk provides a client SDK for the deskauth authentication service.

# SDKClient vs Session

  - SDKClient: unauthenticated operations (login, bootstrap, health checks)
  - Session: operations that carry a bearer token

Create an SDKClient and log in to obtain a Session:

	client := authsdk.NewSDKClient("http://localhost:4000")

	session, err := client.Login(ctx, "root", password)
	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// wrong username or password
	}

A token saved from an earlier login can be reused:

	session := client.NewSession(os.Getenv("AUTHCTL_TOKEN"))

# Administration

Sessions of admin users can manage accounts:

	user, err := session.Register(ctx, authsdk.RegisterRequest{Username: "alice", Password: pw})
	users, err := session.ListUsers(ctx)
	err = session.ResetPassword(ctx, "alice", newPassword)
	err = session.DeleteUser(ctx, "alice")

Any user can change their own password:

	err = session.ChangePassword(ctx, oldPassword, newPassword)

# Bootstrap

A fresh service has no users. If it was started with a bootstrap token the
first administrator can be created remotely:

	admin, err := client.Bootstrap(ctx, bootstrapToken, authsdk.BootstrapRequest{
		Username: "root",
		Password: password,
	})

# Errors

Every non-2xx response is returned as *APIError. Compare against the
predefined errors with errors.Is, which matches on the error code:

	if errors.Is(err, authsdk.ErrForbidden) {
		// not an admin
	}

Tokens are valid for a fixed period and cannot be refreshed. A Session whose
expiry is known fails locally with ErrSessionExpired once it passes.
*/
package authsdk
