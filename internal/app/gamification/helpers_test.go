package gamification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salescoach/coach/internal/app/gamification"
	"github.com/salescoach/coach/internal/domain"
)

// memStore is an in-memory domain.StateStore with switchable failures.
type memStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	versions  map[string]int64
	saves     int // successful saves
	saveCalls int
	deletes   int
	loadErr   error
	saveErr   error
	deleteErr error
}

func newMemStore() *memStore {
	return &memStore{
		data:     make(map[string][]byte),
		versions: make(map[string]int64),
	}
}

func (m *memStore) Load(_ context.Context, key string) ([]byte, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, 0, m.loadErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, 0, nil
	}
	return append([]byte(nil), v...), m.versions[key], nil
}

func (m *memStore) Save(_ context.Context, key string, value []byte, expected int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	if m.versions[key] != expected {
		return 0, domain.ErrVersionConflict
	}
	m.data[key] = append([]byte(nil), value...)
	m.versions[key] = expected + 1
	m.saves++
	return expected + 1, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.data, key)
	delete(m.versions, key)
	m.deletes++
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error              { return nil }

// stored decodes the document held under key.
func (m *memStore) stored(t *testing.T, key string) domain.State {
	t.Helper()
	m.mu.Lock()
	data, ok := m.data[key]
	m.mu.Unlock()
	require.True(t, ok, "nothing stored under %s", key)
	state, err := gamification.DecodeState(data, gamification.DefaultCatalog())
	require.NoError(t, err)
	return state
}

var errBoom = errors.New("boom")

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// day0 is a fixed mid-day instant used as "now" throughout the tests.
var day0 = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func findBadge(badges []domain.Badge, id string) domain.Badge {
	for _, b := range badges {
		if b.ID == id {
			return b
		}
	}
	return domain.Badge{}
}
