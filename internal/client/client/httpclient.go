package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediguard/internal/client/models"
	"github.com/dmitrijs2005/mediguard/internal/common"
	"github.com/dmitrijs2005/mediguard/internal/logging"
)

// DefaultTimeout bounds a whole exchange when no WithTimeout is given.
const DefaultTimeout = 15 * time.Second

const maxBodySize = 1 << 20

// API paths relative to the base URL.
const (
	pathLogin     = "/auth/login"
	pathRegister  = "/auth/register"
	pathLogout    = "/auth/logout"
	pathProfile   = "/user/profile"
	pathReminders = "/medication-remainder"
	pathSymptoms  = "/symptomchecker"
	pathHealth    = "/health"
)

type options struct {
	timeout   time.Duration
	transport http.RoundTripper
	logger    logging.Logger
	metrics   *Metrics
	extra     []Middleware
}

type Option func(*options)

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTransport replaces http.DefaultTransport at the bottom of the pipeline.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithMiddleware inserts mws after metrics and before AttachCredential.
func WithMiddleware(mws ...Middleware) Option {
	return func(o *options) { o.extra = append(o.extra, mws...) }
}

// envelope is the shape of every API answer.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type authData struct {
	Token string              `json:"token"`
	User  *models.UserProfile `json:"user"`
}

type profileData struct {
	User *models.UserProfile `json:"user"`
}

type reminderData struct {
	Reminder *models.MedicationReminder `json:"medicationRemainder"`
}

type remindersData struct {
	Reminders []models.MedicationReminder `json:"medicationRemainders"`
}

type symptomRequest struct {
	Message string `json:"message"`
}

type symptomData struct {
	Check *models.SymptomCheck `json:"symptomCheck"`
}

type symptomsData struct {
	Checks []models.SymptomCheck `json:"symptomChecks"`
}

// HTTPClient implements Client against the MediGuard JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	session SessionStore
	logger  logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for baseURL (e.g. "https://host/api/v1")
// bound to session.
func NewHTTPClient(baseURL string, session SessionStore, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}
	if session == nil {
		return nil, errors.New("session store is required")
	}

	o := options{
		timeout:   DefaultTimeout,
		transport: http.DefaultTransport,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("component", "api")

	mws := []Middleware{RequestID(), Logging(logger)}
	if o.metrics != nil {
		mws = append(mws, o.metrics.Middleware())
	}
	mws = append(mws, o.extra...)
	mws = append(mws,
		AttachCredential(session.Token),
		InvalidateOnUnauthorized(session.Invalidate, logger),
	)

	return &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: o.timeout, Transport: Chain(o.transport, mws...)},
		session: session,
		logger:  logger,
	}, nil
}

// Login authenticates and stores the new session.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidCredentials)
	}

	// Credentials forms go out without the session token, so a rejected
	// attempt is never taken for an expired session.
	var data authData
	err := c.do(WithToken(ctx, ""), http.MethodPost, pathLogin, loginRequest{Email: strings.TrimSpace(email), Password: password}, &data)
	if err != nil {
		return nil, asFormError(err, ErrInvalidCredentials)
	}
	return c.establish(ctx, data)
}

// Register creates an account and stores the resulting session.
func (c *HTTPClient) Register(ctx context.Context, name, email, password, phone string) (*models.AuthResult, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrRegistrationFailed)
	}

	req := registerRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
		Phone:    strings.TrimSpace(phone),
	}
	var data authData
	if err := c.do(WithToken(ctx, ""), http.MethodPost, pathRegister, req, &data); err != nil {
		return nil, asFormError(err, ErrRegistrationFailed)
	}
	return c.establish(ctx, data)
}

func (c *HTTPClient) establish(ctx context.Context, data authData) (*models.AuthResult, error) {
	if strings.TrimSpace(data.Token) == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnexpectedResponse)
	}
	if err := data.User.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	if err := c.session.SetSession(ctx, data.User, data.Token); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &models.AuthResult{Token: data.Token, User: data.User.Clone()}, nil
}

// FetchProfile loads the current user's profile and refreshes the stored
// copy. Without a session it fails with ErrUnauthorized and sends nothing.
func (c *HTTPClient) FetchProfile(ctx context.Context) (*models.UserProfile, error) {
	token := c.session.Token()
	if token == "" {
		return nil, ErrUnauthorized
	}

	user, err := c.profile(WithToken(ctx, token))
	if err != nil {
		return nil, err
	}
	if err := c.session.UpdateProfile(ctx, token, user); err != nil {
		c.logger.Warn(ctx, "refreshing stored profile failed", "error", err)
	}
	return user, nil
}

// ValidateToken resolves the profile behind token without touching the
// session. It backs session.Store.Initialize.
func (c *HTTPClient) ValidateToken(ctx context.Context, token string) (*models.UserProfile, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	return c.profile(WithToken(ctx, token))
}

func (c *HTTPClient) profile(ctx context.Context) (*models.UserProfile, error) {
	var data profileData
	if err := c.do(ctx, http.MethodGet, pathProfile, nil, &data); err != nil {
		return nil, err
	}
	if err := data.User.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return data.User, nil
}

// Logout notifies the server on a best-effort basis and then always clears
// the local session. Only a local failure is returned.
func (c *HTTPClient) Logout(ctx context.Context) error {
	if token := c.session.Token(); token != "" {
		if err := c.do(WithToken(ctx, token), http.MethodPost, pathLogout, nil, nil); err != nil {
			c.logger.Warn(ctx, "remote logout failed, clearing local session anyway", "error", err)
		}
	}
	return c.session.ClearSession(ctx)
}

func (c *HTTPClient) CreateMedicationReminder(ctx context.Context, r models.NewMedicationReminder) (*models.MedicationReminder, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var data reminderData
	if err := c.do(ctx, http.MethodPost, pathReminders, r, &data); err != nil {
		return nil, err
	}
	if data.Reminder == nil {
		return nil, fmt.Errorf("%w: missing reminder", ErrUnexpectedResponse)
	}
	return data.Reminder, nil
}

func (c *HTTPClient) ListMedicationReminders(ctx context.Context) ([]models.MedicationReminder, error) {
	var data remindersData
	if err := c.do(ctx, http.MethodGet, pathReminders, nil, &data); err != nil {
		return nil, err
	}
	return data.Reminders, nil
}

func (c *HTTPClient) CheckSymptoms(ctx context.Context, message string) (*models.SymptomCheck, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: symptom description is empty", ErrRequestFailed)
	}

	var data symptomData
	if err := c.do(ctx, http.MethodPost, pathSymptoms, symptomRequest{Message: message}, &data); err != nil {
		return nil, err
	}
	if data.Check == nil {
		return nil, fmt.Errorf("%w: missing symptom check", ErrUnexpectedResponse)
	}
	return data.Check, nil
}

func (c *HTTPClient) ListSymptomChecks(ctx context.Context) ([]models.SymptomCheck, error) {
	var data symptomsData
	if err := c.do(ctx, http.MethodGet, pathSymptoms, nil, &data); err != nil {
		return nil, err
	}
	return data.Checks, nil
}

// Ping checks that the API answers.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, pathHealth, nil, nil)
}

// do performs one exchange: it encodes in as JSON, sends it through the
// pipeline, and decodes the envelope's data into out (when out is non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrNetwork, err)
	}
	raw = bytes.TrimSpace(raw)

	var env envelope
	var decodeErr error
	if len(raw) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return newAPIError(resp.StatusCode, msg)
	}

	if len(raw) == 0 {
		if out == nil {
			return nil
		}
		return fmt.Errorf("%w: empty body", ErrUnexpectedResponse)
	}
	if decodeErr != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedResponse, decodeErr)
	}
	if env.Status != "" && env.Status != common.StatusSuccess {
		return newAPIError(http.StatusBadRequest, env.Message)
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: empty data", ErrUnexpectedResponse)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return nil
}
