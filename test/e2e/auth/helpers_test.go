package auth_test

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/deskauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * The service runs from its Docker image against a SQLite file inside the
 * container, so every test gets a fresh, empty database.
 */

const (
	testImageName = "deskauth-test:latest"

	bootstrapToken = "test-bootstrap-token-12345"
	jwtSecret      = "e2e-secret-0123456789abcdef012345"
	adminUsername  = "admin"
	adminPassword  = "Admin123!"
)

// TestMain builds the Docker image once before all tests and removes it after.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		fmt.Fprintln(os.Stdout, "Skipping auth e2e tests in short mode")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building auth service Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up auth service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // the image might not exist
}

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_SECRET":           jwtSecret,
		"BOOTSTRAP_TOKEN":      bootstrapToken,
		"AUTH_DATABASE_DRIVER": "sqlite",
		"AUTH_DATABASE_FILE":   "/tmp/auth.db",
		"AUTH_BCRYPT_COST":     "4",
		"ENV":                  "test",
		"LOG_LEVEL":            "info",
		"LOG_FORMAT":           "json",
	}
}

// setupAuthContainer starts the service with relaxed rate limits and returns
// its base URL. Tests make many rapid requests that would otherwise trip the
// production limits.
func setupAuthContainer(t *testing.T) string {
	t.Helper()

	env := baseEnv()
	maps.Copy(env, map[string]string{
		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
	})
	return startContainer(t, env)
}

// setupAuthContainerWithDefaultRateLimits is for the tests that check the
// limits themselves.
func setupAuthContainerWithDefaultRateLimits(t *testing.T) string {
	t.Helper()
	return startContainer(t, baseEnv())
}

func startContainer(t *testing.T, env map[string]string) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"4000/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("4000/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "4000")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// bootstrapService creates the first admin and returns a logged-in session.
func bootstrapService(t *testing.T, client *authsdk.SDKClient) *authsdk.Session {
	t.Helper()

	admin, err := client.Bootstrap(t.Context(), bootstrapToken, authsdk.BootstrapRequest{
		Username: adminUsername,
		Password: adminPassword,
	})
	require.NoError(t, err, "Bootstrap should succeed")
	require.Equal(t, "admin", admin.Role)

	return performLogin(t, client, adminUsername, adminPassword)
}

func performLogin(t *testing.T, client *authsdk.SDKClient, username, password string) *authsdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), username, password)
	require.NoError(t, err, "Login should succeed")
	require.NotEmpty(t, session.Token())
	return session
}

// registerUser creates a user through the admin session and logs it in.
func registerUser(t *testing.T, client *authsdk.SDKClient, admin *authsdk.Session, username, password, role string) *authsdk.Session {
	t.Helper()

	_, err := admin.Register(t.Context(), authsdk.RegisterRequest{
		Username: username,
		Password: password,
		Role:     role,
	})
	require.NoError(t, err, "Register should succeed")
	return performLogin(t, client, username, password)
}

func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
