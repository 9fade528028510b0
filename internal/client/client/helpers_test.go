package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/mediguard/internal/client/models"
	"github.com/dmitrijs2005/mediguard/internal/common"
	"github.com/stretchr/testify/require"
)

/*************
 * Fake session
 *************/

type fakeSession struct {
	mu    sync.Mutex
	token string
	user  *models.UserProfile

	setErr   error
	clearErr error

	cleared     int
	invalidated []string
}

func (f *fakeSession) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSession) SetSession(_ context.Context, user *models.UserProfile, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.user, f.token = user.Clone(), token
	return nil
}

func (f *fakeSession) UpdateProfile(_ context.Context, token string, user *models.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token == f.token {
		f.user = user.Clone()
	}
	return nil
}

func (f *fakeSession) ClearSession(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	f.user, f.token = nil, ""
	return f.clearErr
}

func (f *fakeSession) Invalidate(_ context.Context, token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, token)
	if token == "" || token != f.token {
		return false
	}
	f.user, f.token = nil, ""
	return true
}

func (f *fakeSession) snapshot() (string, *models.UserProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.user.Clone()
}

/*************
 * Fake API
 *************/

var alice = &models.UserProfile{ID: "u1", Name: "Alice", Email: "alice@example.com"}

func writeEnvelope(w http.ResponseWriter, code int, message string, data any) {
	status := common.StatusSuccess
	if code >= 400 {
		status = common.StatusError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// newTestClient serves mux under /api/v1 and returns a client pointed at it.
func newTestClient(t *testing.T, mux *http.ServeMux, sess SessionStore, opts ...Option) (*HTTPClient, *httptest.Server) {
	t.Helper()

	root := http.NewServeMux()
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", mux))
	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL+"/api/v1", sess, opts...)
	require.NoError(t, err)
	return c, srv
}
