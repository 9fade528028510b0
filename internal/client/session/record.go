package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediguard/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

// Storage keys of the persisted record.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// decodeRecord turns the raw stored values into a session. Both absent is
// errNoRecord; anything partial or malformed is ErrCorruptPersistedState.
func decodeRecord(rawToken, rawUser []byte) (string, *models.UserProfile, error) {
	if rawToken == nil && rawUser == nil {
		return "", nil, errNoRecord
	}
	if rawToken == nil {
		return "", nil, fmt.Errorf("%w: user without token", ErrCorruptPersistedState)
	}
	if rawUser == nil {
		return "", nil, fmt.Errorf("%w: token without user", ErrCorruptPersistedState)
	}

	token := strings.TrimSpace(string(rawToken))
	if token == "" {
		return "", nil, fmt.Errorf("%w: blank token", ErrCorruptPersistedState)
	}

	trimmed := bytes.TrimSpace(rawUser)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", nil, fmt.Errorf("%w: user is not an object", ErrCorruptPersistedState)
	}

	var user models.UserProfile
	if err := json.Unmarshal(trimmed, &user); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrCorruptPersistedState, err)
	}
	if err := user.Validate(); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrCorruptPersistedState, err)
	}

	return token, &user, nil
}

func encodeRecord(token string, user *models.UserProfile) (map[string][]byte, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	return map[string][]byte{
		TokenKey: []byte(token),
		UserKey:  raw,
	}, nil
}

// tokenExpired reports whether token is a JWT whose exp claim is not after
// now. Opaque tokens and tokens without exp are left to the server.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(now)
}
