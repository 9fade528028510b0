package session

import "errors"

var (
	// ErrInvalidSession rejects a SetSession without a token or with an
	// incomplete profile.
	ErrInvalidSession = errors.New("invalid session")

	// ErrCorruptPersistedState marks a stored record that cannot be trusted.
	// It is handled inside Initialize and never returned to callers.
	ErrCorruptPersistedState = errors.New("corrupt persisted session")

	// ErrValidationUnavailable is returned by a Validator that could not
	// reach the server. Initialize then keeps the persisted session.
	ErrValidationUnavailable = errors.New("session validation unavailable")

	errNoRecord = errors.New("no persisted session")
)
