package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediguard/internal/client/models"
	"github.com/dmitrijs2005/mediguard/internal/client/session"
	"github.com/dmitrijs2005/mediguard/internal/client/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Validation(t *testing.T) {
	_, err := NewHTTPClient("not a url", &fakeSession{})
	require.Error(t, err)

	_, err = NewHTTPClient("http://localhost/api", nil)
	require.Error(t, err)

	c, err := NewHTTPClient("http://localhost/api/v1/", &fakeSession{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/api/v1", c.baseURL)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}

func TestLogin_StoresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, loginRequest{Email: "alice@example.com", Password: "secret"}, req)
		assert.Empty(t, r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "", map[string]any{"token": "t1", "user": alice})
	})

	sess := &fakeSession{}
	c, _ := newTestClient(t, mux, sess)

	res, err := c.Login(context.Background(), " alice@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "t1", res.Token)
	if diff := cmp.Diff(alice, res.User); diff != "" {
		t.Fatalf("user mismatch (-want +got):\n%s", diff)
	}

	token, user := sess.snapshot()
	assert.Equal(t, "t1", token)
	assert.Equal(t, alice, user)
}

func TestLogin_Rejected(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound} {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, code, "Invalid email or password", nil)
		})
		sess := &fakeSession{}
		c, _ := newTestClient(t, mux, sess)

		_, err := c.Login(context.Background(), "alice@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials, "status %d", code)
		assert.NotErrorIs(t, err, ErrUnauthorized)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, code, apiErr.StatusCode)
		assert.Equal(t, "Invalid email or password", apiErr.Message)

		token, _ := sess.snapshot()
		assert.Empty(t, token)
		assert.Empty(t, sess.invalidated)
	}
}

func TestLogin_RejectedKeepsExistingSession(t *testing.T) {
	for _, path := range []string{"/auth/login", "/auth/register"} {
		t.Run(path, func(t *testing.T) {
			var gotAuth []string
			mux := http.NewServeMux()
			mux.HandleFunc("POST "+path, func(w http.ResponseWriter, r *http.Request) {
				gotAuth = append(gotAuth, r.Header.Get("Authorization"))
				writeEnvelope(w, http.StatusUnauthorized, "Invalid email or password", nil)
			})
			sess := &fakeSession{token: "good-token", user: alice.Clone()}
			c, _ := newTestClient(t, mux, sess)

			var err error
			if path == "/auth/login" {
				_, err = c.Login(context.Background(), "alice@example.com", "typo")
				require.ErrorIs(t, err, ErrInvalidCredentials)
			} else {
				_, err = c.Register(context.Background(), "Alice", "alice@example.com", "typo", "")
				require.ErrorIs(t, err, ErrRegistrationFailed)
			}
			assert.NotErrorIs(t, err, ErrUnauthorized)

			assert.Equal(t, []string{""}, gotAuth)
			token, user := sess.snapshot()
			assert.Equal(t, "good-token", token)
			assert.Equal(t, alice.Email, user.Email)
			assert.Empty(t, sess.invalidated)
			assert.Zero(t, sess.cleared)
		})
	}
}

func TestLogin_ServerErrorIsNetwork(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	c, _ := newTestClient(t, mux, &fakeSession{})

	_, err := c.Login(context.Background(), "alice@example.com", "secret")
	require.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_IncompleteAnswer(t *testing.T) {
	cases := map[string]any{
		"no token":   map[string]any{"user": alice},
		"no user":    map[string]any{"token": "t1"},
		"empty user": map[string]any{"token": "t1", "user": map[string]any{"id": "u1"}},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, http.StatusOK, "", data)
			})
			sess := &fakeSession{}
			c, _ := newTestClient(t, mux, sess)

			_, err := c.Login(context.Background(), "alice@example.com", "secret")
			require.ErrorIs(t, err, ErrUnexpectedResponse)
			token, _ := sess.snapshot()
			assert.Empty(t, token)
		})
	}
}

func TestLogin_EmptyFieldsSendNothing(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })
	c, _ := newTestClient(t, mux, &fakeSession{})

	_, err := c.Login(context.Background(), "", "secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = c.Login(context.Background(), "alice@example.com", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = c.Register(context.Background(), "", "alice@example.com", "secret", "")
	require.ErrorIs(t, err, ErrRegistrationFailed)

	assert.Zero(t, hits.Load())
}

func TestLogin_StoreFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "", map[string]any{"token": "t1", "user": alice})
	})
	sess := &fakeSession{setErr: errors.New("disk full")}
	c, _ := newTestClient(t, mux, sess)

	_, err := c.Login(context.Background(), "alice@example.com", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Email == "taken@example.com" {
			writeEnvelope(w, http.StatusConflict, "User already exists", nil)
			return
		}
		assert.Equal(t, registerRequest{Name: "Alice", Email: "alice@example.com", Password: "secret", Phone: "+100"}, req)
		writeEnvelope(w, http.StatusCreated, "", map[string]any{"token": "t1", "user": alice})
	})
	sess := &fakeSession{}
	c, _ := newTestClient(t, mux, sess)

	_, err := c.Register(context.Background(), "Alice", "taken@example.com", "secret", "")
	require.ErrorIs(t, err, ErrRegistrationFailed)
	assert.Contains(t, err.Error(), "User already exists")

	res, err := c.Register(context.Background(), "Alice", "alice@example.com", "secret", "+100")
	require.NoError(t, err)
	assert.Equal(t, "t1", res.Token)
	token, _ := sess.snapshot()
	assert.Equal(t, "t1", token)
}

func TestFetchProfile_SendsBearerAndRefreshes(t *testing.T) {
	renamed := &models.UserProfile{ID: "u1", Name: "Alice B", Email: "alice@example.com"}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/profile", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "", map[string]any{"user": renamed})
	})
	sess := &fakeSession{token: "t1", user: alice.Clone()}
	c, _ := newTestClient(t, mux, sess)

	got, err := c.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, renamed, got)

	_, user := sess.snapshot()
	assert.Equal(t, renamed, user)
}

func TestFetchProfile_NoSession(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })
	c, _ := newTestClient(t, mux, &fakeSession{})

	_, err := c.FetchProfile(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, hits.Load())
}

func TestValidateToken_UsesGivenToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/profile", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer persisted", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "", map[string]any{"user": alice})
	})
	sess := &fakeSession{token: "other", user: alice.Clone()}
	c, _ := newTestClient(t, mux, sess)

	got, err := c.ValidateToken(context.Background(), "persisted")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	token, _ := sess.snapshot()
	assert.Equal(t, "other", token)

	_, err = c.ValidateToken(context.Background(), "")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestUnauthorized_InvalidatesSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /medication-remainder", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, "Token expired", nil)
	})
	sess := &fakeSession{token: "t1", user: alice.Clone()}
	c, _ := newTestClient(t, mux, sess)

	_, err := c.ListMedicationReminders(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)

	token, user := sess.snapshot()
	assert.Empty(t, token)
	assert.Nil(t, user)
	assert.Equal(t, []string{"t1"}, sess.invalidated)
}

func TestUnauthorized_StaleTokenKeepsNewerSession(t *testing.T) {
	sess := &fakeSession{token: "t1", user: alice.Clone()}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /symptomchecker", func(w http.ResponseWriter, r *http.Request) {
		// A fresh login lands while the old request is in flight.
		assert.NoError(t, sess.SetSession(r.Context(), alice, "t2"))
		writeEnvelope(w, http.StatusUnauthorized, "", nil)
	})
	c, _ := newTestClient(t, mux, sess)

	_, err := c.ListSymptomChecks(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)

	token, _ := sess.snapshot()
	assert.Equal(t, "t2", token)
	assert.Equal(t, []string{"t1"}, sess.invalidated)
}

func TestLogout(t *testing.T) {
	t.Run("remote ok", func(t *testing.T) {
		var got string
		mux := http.NewServeMux()
		mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			writeEnvelope(w, http.StatusOK, "Logged out", nil)
		})
		sess := &fakeSession{token: "t1", user: alice.Clone()}
		c, _ := newTestClient(t, mux, sess)

		require.NoError(t, c.Logout(context.Background()))
		assert.Equal(t, "Bearer t1", got)
		assert.Equal(t, 1, sess.cleared)
	})

	t.Run("remote failure still clears", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		})
		sess := &fakeSession{token: "t1", user: alice.Clone()}
		c, _ := newTestClient(t, mux, sess)

		require.NoError(t, c.Logout(context.Background()))
		token, user := sess.snapshot()
		assert.Empty(t, token)
		assert.Nil(t, user)
	})

	t.Run("unreachable server still clears", func(t *testing.T) {
		sess := &fakeSession{token: "t1", user: alice.Clone()}
		c, srv := newTestClient(t, http.NewServeMux(), sess)
		srv.Close()

		require.NoError(t, c.Logout(context.Background()))
		assert.Equal(t, 1, sess.cleared)
	})

	t.Run("local failure is returned", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, "", nil)
		})
		sess := &fakeSession{token: "t1", user: alice.Clone(), clearErr: errors.New("locked")}
		c, _ := newTestClient(t, mux, sess)

		require.Error(t, c.Logout(context.Background()))
	})

	t.Run("no session makes no call", func(t *testing.T) {
		var hits atomic.Int32
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })
		sess := &fakeSession{}
		c, _ := newTestClient(t, mux, sess)

		require.NoError(t, c.Logout(context.Background()))
		assert.Zero(t, hits.Load())
		assert.Equal(t, 1, sess.cleared)
	})
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		code int
		body string
		want error
	}{
		{"bad request", http.StatusBadRequest, `{"status":"error","message":"bad"}`, ErrRequestFailed},
		{"not found", http.StatusNotFound, ``, ErrRequestFailed},
		{"unauthorized", http.StatusUnauthorized, `{"status":"error"}`, ErrUnauthorized},
		{"request timeout", http.StatusRequestTimeout, ``, ErrNetwork},
		{"rate limited", http.StatusTooManyRequests, ``, ErrNetwork},
		{"internal", http.StatusInternalServerError, `oops`, ErrNetwork},
		{"error envelope with 200", http.StatusOK, `{"status":"error","message":"nope"}`, ErrRequestFailed},
		{"not json", http.StatusOK, `<html></html>`, ErrUnexpectedResponse},
		{"empty body", http.StatusOK, ``, ErrUnexpectedResponse},
		{"null data", http.StatusOK, `{"status":"success","data":null}`, ErrUnexpectedResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /medication-remainder", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				_, _ = w.Write([]byte(tc.body))
			})
			c, _ := newTestClient(t, mux, &fakeSession{})

			_, err := c.ListMedicationReminders(context.Background())
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTransportFailureIsNetwork(t *testing.T) {
	c, srv := newTestClient(t, http.NewServeMux(), &fakeSession{})
	srv.Close()

	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrNetwork)
}

func TestTimeoutIsNetwork(t *testing.T) {
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	c, _ := newTestClient(t, mux, &fakeSession{}, WithTimeout(50*time.Millisecond))
	defer close(release)

	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrNetwork)
}

func TestReminders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /medication-remainder", func(w http.ResponseWriter, r *http.Request) {
		var in models.NewMedicationReminder
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeEnvelope(w, http.StatusCreated, "", map[string]any{
			"medicationRemainder": models.MedicationReminder{
				ID: "r1", MedicationName: in.MedicationName, Dose: in.Dose, Time: in.Time,
				RepeatInterval: in.RepeatInterval, Schedule: "0 8 * * *",
			},
		})
	})
	mux.HandleFunc("GET /medication-remainder", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "", map[string]any{
			"medicationRemainders": []models.MedicationReminder{{ID: "r1", MedicationName: "Aspirin"}},
		})
	})
	c, _ := newTestClient(t, mux, &fakeSession{token: "t1", user: alice.Clone()})

	_, err := c.CreateMedicationReminder(context.Background(), models.NewMedicationReminder{Dose: "1"})
	require.ErrorIs(t, err, models.ErrInvalidReminder)

	created, err := c.CreateMedicationReminder(context.Background(), models.NewMedicationReminder{
		MedicationName: "Aspirin", Dose: "100mg", Time: "08:00", RepeatInterval: 24,
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", created.ID)
	assert.Equal(t, "0 8 * * *", created.Schedule)

	list, err := c.ListMedicationReminders(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Aspirin", list[0].MedicationName)
}

func TestSymptoms(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /symptomchecker", func(w http.ResponseWriter, r *http.Request) {
		var in symptomRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeEnvelope(w, http.StatusOK, "", map[string]any{
			"symptomCheck": models.SymptomCheck{ID: "s1", Message: in.Message, Response: "rest"},
		})
	})
	mux.HandleFunc("GET /symptomchecker", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "", map[string]any{"symptomChecks": []models.SymptomCheck{}})
	})
	c, _ := newTestClient(t, mux, &fakeSession{token: "t1", user: alice.Clone()})

	_, err := c.CheckSymptoms(context.Background(), "   ")
	require.ErrorIs(t, err, ErrRequestFailed)

	got, err := c.CheckSymptoms(context.Background(), "headache")
	require.NoError(t, err)
	assert.Equal(t, "headache", got.Message)
	assert.Equal(t, "rest", got.Response)

	list, err := c.ListSymptomChecks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMetricsCountRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "ok", nil)
	})
	c, _ := newTestClient(t, mux, &fakeSession{}, WithMetrics(m))

	require.NoError(t, c.Ping(context.Background()))
	require.NoError(t, c.Ping(context.Background()))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("200", "get")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))

	_, err = NewMetrics(reg)
	require.Error(t, err, "registering twice must fail")
}

// Concurrent 401s against a real store clear the session exactly once.
func TestConcurrentUnauthorized_ClearsOnce(t *testing.T) {
	ctx := context.Background()

	db, err := storage.Open(ctx, t.TempDir()+"/session.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := session.NewStore(storage.NewKV(db))
	require.NoError(t, store.SetSession(ctx, alice, "t1"))

	var cleared atomic.Int32
	store.Subscribe(func(s session.Snapshot) {
		if !s.Authenticated() {
			cleared.Add(1)
		}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /medication-remainder", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, "expired", nil)
	})
	c, _ := newTestClient(t, mux, store)

	const n = 8
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ListMedicationReminders(ctx)
			assert.ErrorIs(t, err, ErrUnauthorized)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), cleared.Load())
	assert.False(t, store.Snapshot().Authenticated())

	raw, err := storage.NewKV(db).Get(ctx, session.TokenKey)
	require.NoError(t, err)
	assert.Nil(t, raw)
}
