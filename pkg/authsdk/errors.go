package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds returned by the service in ErrorResponse.Error.
const (
	ErrorCodeInvalidRequest        = "invalid_request"
	ErrorCodeInvalidCredentials    = "invalid_credentials"
	ErrorCodeInvalidOldPassword    = "invalid_old_password"
	ErrorCodeInvalidRole           = "invalid_role"
	ErrorCodeDuplicateUsername     = "duplicate_username"
	ErrorCodeSelfDeleteForbidden   = "self_delete_forbidden"
	ErrorCodeNotFound              = "not_found"
	ErrorCodeUnauthenticated       = "unauthenticated"
	ErrorCodeInvalidToken          = "invalid_token"
	ErrorCodeForbidden             = "forbidden"
	ErrorCodeRateLimited           = "rate_limit_exceeded"
	ErrorCodeInvalidBootstrapToken = "invalid_bootstrap_token"
	ErrorCodeAlreadyBootstrapped   = "already_bootstrapped"
	ErrorCodeServerError           = "server_error"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Code, e.Message, e.StatusCode)
}

// Is matches on Code, so errors.Is(err, authsdk.ErrNotFound) holds for any
// not_found response regardless of its message.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Predefined errors for use with errors.Is.
var (
	ErrInvalidRequest        = &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeInvalidRequest}
	ErrInvalidCredentials    = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeInvalidCredentials}
	ErrInvalidOldPassword    = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeInvalidOldPassword}
	ErrInvalidRole           = &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeInvalidRole}
	ErrDuplicateUsername     = &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeDuplicateUsername}
	ErrSelfDeleteForbidden   = &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeSelfDeleteForbidden}
	ErrNotFound              = &APIError{StatusCode: http.StatusNotFound, Code: ErrorCodeNotFound}
	ErrUnauthenticated       = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeUnauthenticated}
	ErrInvalidToken          = &APIError{StatusCode: http.StatusForbidden, Code: ErrorCodeInvalidToken}
	ErrForbidden             = &APIError{StatusCode: http.StatusForbidden, Code: ErrorCodeForbidden}
	ErrRateLimited           = &APIError{StatusCode: http.StatusTooManyRequests, Code: ErrorCodeRateLimited}
	ErrInvalidBootstrapToken = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeInvalidBootstrapToken}
	ErrAlreadyBootstrapped   = &APIError{StatusCode: http.StatusConflict, Code: ErrorCodeAlreadyBootstrapped}
	ErrServerError           = &APIError{StatusCode: http.StatusInternalServerError, Code: ErrorCodeServerError}
)

// ErrSessionExpired is returned locally, without a request, when a session's
// token is known to have expired.
var ErrSessionExpired = errors.New("authsdk: session expired, log in again")

// parseErrorResponse turns a non-2xx response into an *APIError. Bodies that
// are not the service's error shape (proxies, panics) still yield an
// APIError keyed on the status code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       errResp.Error,
			Message:    errResp.Message,
		}
	}

	code := ErrorCodeServerError
	switch resp.StatusCode {
	case http.StatusNotFound:
		code = ErrorCodeNotFound
	case http.StatusTooManyRequests:
		code = ErrorCodeRateLimited
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Code: code, Message: msg}
}
