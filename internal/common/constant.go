// Package common contains constants shared by the MediGuard client and the
// development API server.
package common

const (
	// AuthorizationHeader carries the bearer credential on outbound requests.
	AuthorizationHeader = "Authorization"

	// BearerPrefix precedes the token in AuthorizationHeader.
	BearerPrefix = "Bearer "

	// RequestIDHeader correlates client and server log lines.
	RequestIDHeader = "X-Request-ID"

	// StatusSuccess and StatusError are the envelope status values.
	StatusSuccess = "success"
	StatusError   = "error"
)
