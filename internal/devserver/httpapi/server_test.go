package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediguard/internal/common"
	"github.com/dmitrijs2005/mediguard/internal/devserver/config"
	"github.com/dmitrijs2005/mediguard/internal/devserver/records"
	"github.com/dmitrijs2005/mediguard/internal/devserver/users"
	"github.com/dmitrijs2005/mediguard/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{SecretKey: "test", AccessTokenValidityDuration: time.Hour}
	us := users.NewService(users.NewMemoryRepository(), cfg).WithBcryptCost(bcrypt.MinCost)

	s, err := NewServer("", logging.Nop(), us, records.NewStore(), prometheus.NewRegistry())
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, response, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env response
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env, resp.Header
}

func register(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	code, env, _ := call(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "secret1", "phone": "+1",
	})
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, common.StatusSuccess, env.Status)

	var data struct {
		Token string  `json:"token"`
		User  userDTO `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	require.Equal(t, "Alice", data.User.Name)
	return data.Token
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv)

	code, env, _ := call(t, srv, http.MethodGet, "/api/v1/user/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	var profile struct {
		User userDTO `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "alice@example.com", profile.User.Email)

	code, _, _ = call(t, srv, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, env, _ = call(t, srv, http.MethodGet, "/api/v1/user/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, common.StatusError, env.Status)

	code, env, _ = call(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"token"`)
}

func TestLogin_Failures(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv)

	code, env, _ := call(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid email or password", env.Message)

	code, _, _ = call(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRegister_Conflict(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv)

	code, env, _ := call(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Other", "email": "ALICE@example.com", "password": "secret2",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, common.StatusError, env.Status)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/v1/user/profile", "/api/v1/medication-remainder", "/api/v1/symptomchecker"} {
		code, _, _ := call(t, srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)

		code, _, _ = call(t, srv, http.MethodGet, path, "forged", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
	}
}

func TestReminders(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv)

	code, _, _ := call(t, srv, http.MethodPost, "/api/v1/medication-remainder", token, map[string]any{"medication_name": "Aspirin"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env, _ := call(t, srv, http.MethodPost, "/api/v1/medication-remainder", token, map[string]any{
		"medication_name": "Aspirin", "medication_dose": "100mg", "medication_time": "08:00", "repeat_interval": 1,
	})
	require.Equal(t, http.StatusCreated, code)
	var created struct {
		Reminder reminderDTO `json:"medicationRemainder"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.Reminder.ID)
	assert.Equal(t, "daily at 08:00", created.Reminder.Schedule)

	code, env, _ = call(t, srv, http.MethodGet, "/api/v1/medication-remainder", token, nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Reminders []reminderDTO `json:"medicationRemainders"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Reminders, 1)
}

func TestSymptomChecker(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv)

	code, env, _ := call(t, srv, http.MethodPost, "/api/v1/symptomchecker", token, map[string]string{"message": "headache"})
	require.Equal(t, http.StatusOK, code)
	var check struct {
		Check symptomCheckDTO `json:"symptomCheck"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &check))
	assert.Equal(t, records.PlaceholderResponse, check.Check.Response)

	code, env, _ = call(t, srv, http.MethodGet, "/api/v1/symptomchecker", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "headache")
}

func TestHealthMetricsAndRequestID(t *testing.T) {
	srv := newTestServer(t)

	code, env, hdr := call(t, srv, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, common.StatusSuccess, env.Status)
	assert.NotEmpty(t, hdr.Get(common.RequestIDHeader))

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `mediguard_devserver_http_requests_total{code="200",method="GET",route="/api/v1/health"} 1`)
}
