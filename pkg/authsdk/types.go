package authsdk

import "time"

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the body of every non-2xx response from the service.
type ErrorResponse struct {
	// Error is a stable machine-readable kind (e.g., "invalid_credentials")
	Error string `json:"error"`

	// Message is a human-readable description of the error
	Message string `json:"message"`
}

// MessageResponse confirms an operation that returns no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Authentication Types
// ============================================================================

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserSummary is the public identity carried by a session.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	// Token is the bearer token for subsequent requests
	Token string `json:"token"`

	// ExpiresAt is when Token stops being accepted
	ExpiresAt time.Time `json:"expires_at"`

	User UserSummary `json:"user"`
}

// ChangePasswordRequest is the body of POST /api/auth/change-password.
// Username is only honoured for admins resetting someone else's password,
// in which case OldPassword is not required.
type ChangePasswordRequest struct {
	Username    string `json:"username,omitempty"`
	OldPassword string `json:"oldPassword,omitempty"`
	NewPassword string `json:"newPassword"`
}

// ============================================================================
// User Management Types
// ============================================================================

// RegisterRequest is the body of POST /api/auth/register. An empty Role
// registers a regular user.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// User is a stored account as returned by the admin endpoints. Password
// hashes are never part of any response.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	User User `json:"user"`
}

// ListUsersResponse is returned from GET /api/users.
type ListUsersResponse struct {
	Users []User `json:"users"`
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest creates the first administrator.
type BootstrapRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ============================================================================
// Health Check Types
// ============================================================================

// HealthResponse is returned from /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency probed by /readyz.
type HealthChecks struct {
	Database string `json:"database"`
}
