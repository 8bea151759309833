package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the deskauth service. It provides the
// unauthenticated operations and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login exchanges credentials for a Session.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", LoginRequest{
		Username: username,
		Password: password,
	}, nil)
	if err != nil {
		return nil, err
	}

	var loginResp LoginResponse
	if err := decodeJSON(resp, &loginResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &Session{
		client:    c,
		token:     loginResp.Token,
		expiresAt: loginResp.ExpiresAt,
		user:      loginResp.User,
	}, nil
}

// NewSession wraps a token obtained earlier, e.g. one persisted by a CLI.
// The token is not checked until the first request.
func (c *SDKClient) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}

// Bootstrap creates the first administrator. It only succeeds on a service
// with a configured bootstrap token and no users.
func (c *SDKClient) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/bootstrap", req, map[string]string{
		"X-Bootstrap-Token": token,
	})
	if err != nil {
		return nil, err
	}

	var userResp UserResponse
	if err := decodeJSON(resp, &userResp, http.StatusCreated); err != nil {
		return nil, err
	}

	return &userResp.User, nil
}
