package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/mediguard/internal/client/models"
	"github.com/dmitrijs2005/mediguard/internal/logging"
)

// LoadingState tells the UI whether the session is known yet.
type LoadingState int

const (
	Initializing LoadingState = iota
	Ready
)

func (s LoadingState) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("LoadingState(%d)", int(s))
	}
}

// Snapshot is an immutable view of the store. User is a private copy.
type Snapshot struct {
	User  *models.UserProfile
	Token string
	State LoadingState
}

// Authenticated reports whether a user is logged in.
func (s Snapshot) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// Storage is the durable medium. Get returns (nil, nil) for absent keys.
// SetMany and DeleteMany must apply all keys or none.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetMany(ctx context.Context, values map[string][]byte) error
	DeleteMany(ctx context.Context, keys ...string) error
}

// Validator resolves the profile behind a persisted token.
type Validator interface {
	ValidateToken(ctx context.Context, token string) (*models.UserProfile, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, token string) (*models.UserProfile, error)

func (f ValidatorFunc) ValidateToken(ctx context.Context, token string) (*models.UserProfile, error) {
	return f(ctx, token)
}

// Listener receives the snapshot produced by each observable mutation.
// It runs synchronously and must not mutate the store.
type Listener func(Snapshot)

type Option func(*Store)

// WithValidator re-validates persisted tokens during Initialize.
func WithValidator(v Validator) Option {
	return func(s *Store) { s.validator = v }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the clock used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Store is the single source of truth for the logged-in user. It is safe
// for concurrent use.
type Store struct {
	storage   Storage
	validator Validator
	logger    logging.Logger
	now       func() time.Time

	mu         sync.Mutex
	user       *models.UserProfile
	token      string
	state      LoadingState
	generation uint64
	listeners  []listenerEntry
	nextID     uint64

	// notifyMu serializes mutations and listener delivery. It is always
	// taken before mu and held until listeners return, so listeners may
	// read the store but must not mutate it.
	notifyMu sync.Mutex
}

func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		logger:  logging.Nop(),
		now:     time.Now,
		state:   Initializing,
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("component", "session")
	return s
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) User() *models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) State() LoadingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: l})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.listeners {
			if e.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Initialize hydrates the store from storage. It always leaves the store
// Ready and never fails; every problem resolves to an empty session.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	token, user, err := s.load(ctx)
	switch {
	case errors.Is(err, errNoRecord):
		s.logger.Debug(ctx, "no persisted session")
		s.finishInit(ctx, gen, nil, "", false)
		return
	case errors.Is(err, ErrCorruptPersistedState):
		s.logger.Warn(ctx, "discarding corrupt persisted session", "error", err)
		s.finishInit(ctx, gen, nil, "", true)
		return
	case err != nil:
		s.logger.Error(ctx, "reading persisted session failed", "error", err)
		s.finishInit(ctx, gen, nil, "", false)
		return
	}

	if tokenExpired(token, s.now()) {
		s.logger.Info(ctx, "persisted session expired", "user_id", user.ID)
		s.finishInit(ctx, gen, nil, "", true)
		return
	}

	if s.validator == nil {
		s.finishInit(ctx, gen, user, token, false)
		return
	}

	profile, err := s.validator.ValidateToken(ctx, token)
	if errors.Is(err, ErrValidationUnavailable) {
		s.logger.Warn(ctx, "cannot validate persisted session, keeping it", "user_id", user.ID, "error", err)
		s.finishInit(ctx, gen, user, token, false)
		return
	}
	if err == nil {
		err = profile.Validate()
	}
	if err != nil {
		s.logger.Warn(ctx, "persisted session rejected", "user_id", user.ID, "error", err)
		s.finishInit(ctx, gen, nil, "", true)
		return
	}
	s.finishInit(ctx, gen, profile.Clone(), token, true)
}

// SetSession replaces the session unconditionally. Storage is written
// first; on failure the in-memory session is left untouched.
func (s *Store) SetSession(ctx context.Context, user *models.UserProfile, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidSession)
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	user = user.Clone()

	s.lockMutation()
	if err := s.persistLocked(ctx, user, token); err != nil {
		s.unlockMutation()
		return fmt.Errorf("persist session: %w", err)
	}
	s.commitLocked(user, token)

	s.logger.Info(ctx, "session established", "user_id", user.ID)
	return nil
}

// UpdateProfile replaces the user of the session identified by token. It is
// a no-op when token is no longer the current one.
func (s *Store) UpdateProfile(ctx context.Context, token string, user *models.UserProfile) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	user = user.Clone()

	s.lockMutation()
	if token == "" || s.token != token {
		s.unlockMutation()
		return nil
	}
	if err := s.persistLocked(ctx, user, token); err != nil {
		s.unlockMutation()
		return fmt.Errorf("persist profile: %w", err)
	}
	s.commitLocked(user, token)
	return nil
}

// ClearSession empties the session in memory and in storage. Memory is
// cleared even when storage removal fails; that error is returned.
func (s *Store) ClearSession(ctx context.Context) error {
	s.lockMutation()
	err := s.removeLocked(ctx)
	s.commitLocked(nil, "")

	if err != nil {
		s.logger.Error(ctx, "removing persisted session failed", "error", err)
		return fmt.Errorf("clear persisted session: %w", err)
	}
	return nil
}

// Invalidate clears the session only if token is still current, and reports
// whether it did. Many callers racing with the same stale token clear once.
func (s *Store) Invalidate(ctx context.Context, token string) bool {
	s.lockMutation()
	if token == "" || s.token != token {
		s.unlockMutation()
		return false
	}
	userID := s.user.ID
	if err := s.removeLocked(ctx); err != nil {
		s.logger.Error(ctx, "removing persisted session failed", "error", err)
	}
	s.commitLocked(nil, "")

	s.logger.Info(ctx, "session invalidated by server", "user_id", userID)
	return true
}

func (s *Store) load(ctx context.Context) (string, *models.UserProfile, error) {
	rawToken, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", TokenKey, err)
	}
	rawUser, err := s.storage.Get(ctx, UserKey)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", UserKey, err)
	}
	return decodeRecord(rawToken, rawUser)
}

func (s *Store) finishInit(ctx context.Context, gen uint64, user *models.UserProfile, token string, touchStorage bool) {
	s.lockMutation()
	if s.generation != gen {
		s.unlockMutation()
		s.logger.Debug(ctx, "initialization superseded by a newer session")
		return
	}

	if touchStorage {
		if user != nil {
			if err := s.persistLocked(ctx, user, token); err != nil {
				s.logger.Warn(ctx, "re-persisting validated session failed", "error", err)
			}
		} else if err := s.removeLocked(ctx); err != nil {
			s.logger.Error(ctx, "removing persisted session failed", "error", err)
		}
	}

	s.commitLocked(user, token)
	if user != nil {
		s.logger.Info(ctx, "session restored", "user_id", user.ID)
	}
}

func (s *Store) persistLocked(ctx context.Context, user *models.UserProfile, token string) error {
	values, err := encodeRecord(token, user)
	if err != nil {
		return err
	}
	return s.storage.SetMany(ctx, values)
}

// removeLocked runs detached from ctx cancellation: a logout must not leave
// a record behind because the caller gave up.
func (s *Store) removeLocked(ctx context.Context) error {
	return s.storage.DeleteMany(context.WithoutCancel(ctx), TokenKey, UserKey)
}

func (s *Store) lockMutation() {
	s.notifyMu.Lock()
	s.mu.Lock()
}

func (s *Store) unlockMutation() {
	s.mu.Unlock()
	s.notifyMu.Unlock()
}

// commitLocked installs the new state, advances the generation and notifies
// listeners when the observable state changed. It must be called after
// lockMutation and releases both locks; listeners run with only notifyMu
// held.
func (s *Store) commitLocked(user *models.UserProfile, token string) {
	before := s.snapshotLocked()

	s.user = user
	s.token = token
	s.state = Ready
	s.generation++

	after := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, e := range s.listeners {
		listeners = append(listeners, e.fn)
	}

	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	if sameSnapshot(before, after) {
		return
	}
	for _, l := range listeners {
		l(after)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{User: s.user.Clone(), Token: s.token, State: s.state}
}

func sameSnapshot(a, b Snapshot) bool {
	if a.Token != b.Token || a.State != b.State {
		return false
	}
	if a.User == nil || b.User == nil {
		return a.User == b.User
	}
	return *a.User == *b.User
}
