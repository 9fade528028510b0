// Package session owns the identity of the logged-in user.
//
// A Store holds the current user profile and bearer token, mirrors them to
// durable storage under the keys "token" and "user", and lets the UI layer
// observe every change. Token and user are always written and cleared
// together; an observer never sees one without the other.
//
// # Lifecycle
//
// A new Store is Initializing. Initialize hydrates it from storage, drops
// corrupt or expired records, optionally re-validates the token through a
// Validator and always ends in Ready. SetSession, UpdateProfile,
// ClearSession and Invalidate mutate a Ready store.
//
// # Ordering
//
// Every mutation advances a generation counter. Initialize remembers the
// generation it started from and discards its result when a newer session
// was set or cleared in the meantime, so a slow start-up validation can
// never overwrite a fresh login.
//
// # Errors
//
// Initialize never fails. SetSession reports ErrInvalidSession for unusable
// input and wraps storage failures. Corrupt persisted state is repaired
// silently and surfaces only as a logged-out session.
package session
