package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/mediguard/internal/client/client"
	"github.com/dmitrijs2005/mediguard/internal/client/config"
	"github.com/dmitrijs2005/mediguard/internal/client/models"
	"github.com/dmitrijs2005/mediguard/internal/client/session"
	"github.com/dmitrijs2005/mediguard/internal/client/storage"
	"github.com/dmitrijs2005/mediguard/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	store  *session.Store
	api    client.Client
	reader *bufio.Reader
	out    io.Writer

	modeMu sync.Mutex
	mode   Mode

	// authenticated mirrors the last snapshot seen by the session listener.
	authenticated atomic.Bool
	loggingOut    atomic.Bool

	metricsSrv *http.Server
	closers    []func() error
}

// NewApp opens the session database, builds the API client and the session
// store around it.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.New(c.LogFormat, c.LogLevel, os.Stderr)

	if err := os.MkdirAll(filepath.Dir(c.StoragePath), 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	db, err := storage.Open(ctx, c.StoragePath)
	if err != nil {
		return nil, err
	}

	opts := []client.Option{client.WithTimeout(c.RequestTimeout), client.WithLogger(logger)}

	var metricsSrv *http.Server
	if c.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		m, err := client.NewMetrics(reg)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		opts = append(opts, client.WithMetrics(m))
		metricsSrv = &http.Server{
			Addr:              c.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	// The store validates through the client, and the client reads the store.
	var api *client.HTTPClient
	storeOpts := []session.Option{session.WithLogger(logger)}
	if c.ValidateOnStart {
		storeOpts = append(storeOpts, session.WithValidator(
			tokenValidator(func() client.Client { return api })))
	}
	store := session.NewStore(storage.NewKV(db), storeOpts...)

	api, err = client.NewHTTPClient(c.APIBaseURL, store, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	app := newApp(c, logger, store, api, os.Stdin, os.Stdout)
	app.metricsSrv = metricsSrv
	app.closers = append(app.closers, db.Close)
	return app, nil
}

// tokenValidator adapts the API client to session.Validator. An unreachable
// server is reported as session.ErrValidationUnavailable so a persisted
// session survives an offline start.
func tokenValidator(api func() client.Client) session.ValidatorFunc {
	return func(ctx context.Context, token string) (*models.UserProfile, error) {
		u, err := api().ValidateToken(ctx, token)
		if errors.Is(err, client.ErrNetwork) {
			return nil, fmt.Errorf("%w: %w", session.ErrValidationUnavailable, err)
		}
		return u, err
	}
}

func newApp(c *config.Config, l logging.Logger, store *session.Store, api client.Client, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		logger: l,
		store:  store,
		api:    api,
		reader: bufio.NewReader(in),
		out:    &syncWriter{w: out},
	}
}

// Run restores the previous session and serves the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close()

	a.startMetricsServer(ctx)

	fmt.Fprintln(a.out, "Welcome to MediGuard (type 'help' for commands)")

	a.store.Initialize(ctx)
	unsubscribe := a.watchSession()
	defer unsubscribe()

	if u := a.store.User(); u != nil {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", u.Name)
	} else {
		fmt.Fprintln(a.out, "You are not logged in. Type 'login' or 'register'.")
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) close() {
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = a.metricsSrv.Shutdown(ctx)
		cancel()
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
}

func (a *App) startMetricsServer(ctx context.Context) {
	if a.metricsSrv == nil {
		return
	}
	go func() {
		a.logger.Info(ctx, "serving metrics", "address", a.metricsSrv.Addr)
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "metrics server failed", "error", err)
		}
	}()
}

// watchSession reports sessions that end without an explicit logout, e.g.
// after the server rejected the token.
func (a *App) watchSession() func() {
	unsubscribe := a.store.Subscribe(a.onSessionChange)
	a.authenticated.Store(a.store.Snapshot().Authenticated())
	return unsubscribe
}

func (a *App) onSessionChange(s session.Snapshot) {
	was := a.authenticated.Swap(s.Authenticated())
	if was && !s.Authenticated() && !a.loggingOut.Load() {
		fmt.Fprintln(a.out, "Session expired, please log in again.")
	}
}

func (a *App) isLoggedIn() bool {
	return a.store.Snapshot().Authenticated()
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

func (a *App) getMode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

// checkOnline pings the API once and updates the mode.
func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.logger.Debug(ctx, "ping failed", "error", err)
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher probes the API every interval until ctx ends.
// A non-positive interval disables it.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	s := "guest"
	if u := a.store.User(); u != nil {
		s = u.Email
	}
	if m := a.getMode(); m != "" {
		s += " " + string(m)
	}
	return fmt.Sprintf("(%s)", s)
}

// syncWriter serializes writes from the REPL, the session listener and the
// online watcher.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
