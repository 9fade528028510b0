// Package client is the only part of MediGuard that talks to the network.
//
// # Overview
//
// HTTPClient implements Client over JSON/HTTP. Every request passes through
// an explicit middleware pipeline of http.RoundTripper decorators, applied
// in this order:
//
//  1. RequestID: tags the request with X-Request-ID.
//  2. Logging: one structured line per exchange.
//  3. Metrics (optional): Prometheus counter and latency histogram.
//  4. AttachCredential: adds "Authorization: Bearer <token>" taken from the
//     context (WithToken) or the session store.
//  5. InvalidateOnUnauthorized: a 401 invalidates the session that owned
//     the token which was sent, whatever operation triggered it.
//
// Login and Register store the new session through SessionStore.SetSession;
// Logout always clears the local session, even when the server cannot be
// reached.
//
// # Error Handling
//
// Failures are *APIError values (or wrapped transport errors) that match
// the sentinels with errors.Is: ErrNetwork, ErrUnauthorized,
// ErrInvalidCredentials, ErrRegistrationFailed, ErrRequestFailed and
// ErrUnexpectedResponse. Nothing is retried automatically; callers may retry
// ErrNetwork.
package client
