package auth_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aussiebroadwan/deskauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLoginEndpoint verifies that login is limited to 5 requests per
// minute per IP.
func TestRateLimitLoginEndpoint(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainerWithDefaultRateLimits(t))

	for i := range 5 {
		_, err := client.Login(t.Context(), "wronguser", "wrongpass")
		require.ErrorIs(t, err, authsdk.ErrInvalidCredentials, "request %d should not be rate limited", i+1)
	}

	_, err := client.Login(t.Context(), "wronguser", "wrongpass")
	require.ErrorIs(t, err, authsdk.ErrRateLimited)
}

// TestRateLimitBootstrapEndpoint verifies bootstrap shares the strict limit.
func TestRateLimitBootstrapEndpoint(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainerWithDefaultRateLimits(t))
	req := authsdk.BootstrapRequest{Username: adminUsername, Password: adminPassword}

	var lastErr error
	for range 6 {
		_, lastErr = client.Bootstrap(t.Context(), "wrong-token", req)
		require.Error(t, lastErr)
	}
	require.ErrorIs(t, lastErr, authsdk.ErrRateLimited)
}

// TestRateLimitHealthEndpoints verifies health checks have the public limit.
func TestRateLimitHealthEndpoints(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainerWithDefaultRateLimits(t))

	for i := range 30 {
		health, err := client.GetLiveness(t.Context())
		require.NoError(t, err, "liveness request %d should not be rate limited", i+1)
		require.Equal(t, "ok", health.Status)

		health, err = client.GetReadiness(t.Context())
		require.NoError(t, err, "readiness request %d should not be rate limited", i+1)
		require.Equal(t, "ok", health.Status)
	}
}

// TestRateLimitResponseFormat verifies the 429 body and headers.
func TestRateLimitResponseFormat(t *testing.T) {
	baseURL := setupAuthContainerWithDefaultRateLimits(t)

	login := func() *http.Response {
		resp, err := http.Post(baseURL+"/api/auth/login", "application/json",
			strings.NewReader(`{"username":"wronguser","password":"wrongpass"}`))
		require.NoError(t, err)
		return resp
	}

	for range 5 {
		resp := login()
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	resp := login()
	defer resp.Body.Close()

	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	require.NotEmpty(t, resp.Header.Get("Retry-After"))
	require.Equal(t, "5", resp.Header.Get("X-RateLimit-Limit"))

	var body authsdk.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, authsdk.ErrorCodeRateLimited, body.Error)
	require.NotEmpty(t, body.Message)
}
