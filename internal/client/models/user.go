// Package models holds the client-side data shapes exchanged with the
// MediGuard API and persisted by the session store.
package models

import (
	"errors"
	"strings"
	"time"
)

// ErrIncompleteProfile is returned by UserProfile.Validate.
var ErrIncompleteProfile = errors.New("incomplete user profile")

// UserProfile identifies the logged-in user. Beyond the presence of Name and
// Email it is opaque to the client.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Validate reports whether the profile carries a name and an email.
func (u *UserProfile) Validate() error {
	if u == nil {
		return ErrIncompleteProfile
	}
	if strings.TrimSpace(u.Name) == "" || strings.TrimSpace(u.Email) == "" {
		return ErrIncompleteProfile
	}
	return nil
}

// Clone returns a copy the caller may modify freely.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// AuthResult is the outcome of a successful login or registration.
type AuthResult struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user"`
}
