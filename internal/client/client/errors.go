package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork covers transport failures, timeouts and 408/429/5xx answers.
	// The caller may retry.
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized means the session is no longer valid.
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistrationFailed = errors.New("registration failed")

	// ErrRequestFailed is any other 4xx answer.
	ErrRequestFailed = errors.New("request failed")

	// ErrUnexpectedResponse is a success status with an unusable body.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// APIError is a non-2xx answer from the API. It unwraps to one of the
// package sentinels.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.kind, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

func newAPIError(status int, message string) *APIError {
	return &APIError{StatusCode: status, Message: message, kind: classifyStatus(status)}
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests, status >= 500:
		return ErrNetwork
	default:
		return ErrRequestFailed
	}
}

// asFormError turns a user-correctable 4xx (including 401) into kind.
// Network failures are returned unchanged.
func asFormError(err error, kind error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && !errors.Is(apiErr.kind, ErrNetwork) {
		return &APIError{StatusCode: apiErr.StatusCode, Message: apiErr.Message, kind: kind}
	}
	return err
}
