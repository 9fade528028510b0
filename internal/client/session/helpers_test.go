package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/mediguard/internal/client/models"
)

// memStorage is an in-memory Storage with failure injection and counters.
type memStorage struct {
	mu   sync.Mutex
	data map[string][]byte

	getErr error
	setErr error
	delErr error

	sets    int
	deletes int
}

func newMemStorage(kv map[string]string) *memStorage {
	m := &memStorage{data: map[string][]byte{}}
	for k, v := range kv {
		m.data[k] = []byte(v)
	}
	return m
}

func (m *memStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *memStorage) SetMany(_ context.Context, values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	for k, v := range values {
		m.data[k] = append([]byte(nil), v...)
	}
	return nil
}

func (m *memStorage) DeleteMany(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.delErr != nil {
		return m.delErr
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *memStorage) value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data[key])
}

func (m *memStorage) counts() (sets, deletes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets, m.deletes
}

// fakeValidator records calls; when gate is set it blocks until gate is
// closed, after signalling entered.
type fakeValidator struct {
	mu      sync.Mutex
	calls   []string
	profile *models.UserProfile
	err     error

	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeValidator) ValidateToken(ctx context.Context, token string) (*models.UserProfile, error) {
	f.mu.Lock()
	f.calls = append(f.calls, token)
	f.mu.Unlock()

	if f.gate != nil {
		close(f.entered)
		<-f.gate
	}
	return f.profile.Clone(), f.err
}

func (f *fakeValidator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func userA() *models.UserProfile {
	return &models.UserProfile{ID: "1", Name: "A", Email: "a@b.com"}
}

func userB() *models.UserProfile {
	return &models.UserProfile{ID: "2", Name: "B", Email: "b@c.com"}
}
