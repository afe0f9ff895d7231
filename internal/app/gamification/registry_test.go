package gamification_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salescoach/coach/internal/app/gamification"
	"github.com/salescoach/coach/internal/domain"
)

func newTestRegistry(t *testing.T, store *memStore, opts ...gamification.Option) *gamification.Registry {
	t.Helper()
	opts = append([]gamification.Option{gamification.WithClock(newFakeClock(day0).Now)}, opts...)
	reg, err := gamification.NewRegistry(store, opts...)
	require.NoError(t, err)
	return reg
}

func TestValidProfile(t *testing.T) {
	valid := []string{"default", "alice", "team-west_2", "a.b", "A"}
	invalid := []string{"", "has space", "../etc", "a/b", "é", string(make([]byte, gamification.MaxProfileLen+1))}

	for _, p := range valid {
		assert.True(t, gamification.ValidProfile(p), "%q should be valid", p)
	}
	for _, p := range invalid {
		assert.False(t, gamification.ValidProfile(p), "%q should be invalid", p)
	}
}

func TestRegistry_InvalidProfile(t *testing.T) {
	reg := newTestRegistry(t, newMemStore())

	_, err := reg.Get(context.Background(), "bad/name")
	require.ErrorIs(t, err, domain.ErrInvalidProfile)
	assert.Equal(t, 0, reg.Loaded())
}

func TestRegistry_SameServicePerProfile(t *testing.T) {
	reg := newTestRegistry(t, newMemStore())
	ctx := context.Background()

	a1, err := reg.Get(ctx, "alice")
	require.NoError(t, err)
	a2, err := reg.Get(ctx, "alice")
	require.NoError(t, err)
	b, err := reg.Get(ctx, "bob")
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, 2, reg.Loaded())
}

func TestRegistry_ProfilesAreIsolated(t *testing.T) {
	store := newMemStore()
	reg := newTestRegistry(t, store)
	ctx := context.Background()

	alice, _ := reg.Get(ctx, "alice")
	_, err := alice.AwardXP(ctx, domain.EventWinOpportunity, "win")
	require.NoError(t, err)

	bob, _ := reg.Get(ctx, "bob")
	assert.Equal(t, int64(0), bob.State().XP)
	assert.Contains(t, store.data, gamification.StateKey("alice"))
	assert.NotContains(t, store.data, gamification.StateKey("bob"))
}

func TestRegistry_ConcurrentAwardsAreSerialized(t *testing.T) {
	store := newMemStore()
	reg := newTestRegistry(t, store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc, err := reg.Get(ctx, "alice")
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := svc.AwardXP(ctx, domain.EventCreateLead, "lead"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	svc, _ := reg.Get(ctx, "alice")
	state := svc.State()
	assert.Equal(t, int64(500), state.XP, "no lost updates")
	assert.Len(t, state.History, 50)
	assert.Equal(t, 50, state.Counters[domain.EventCreateLead])
	assert.Equal(t, 50, store.saves)
}

func TestRegistry_ReloadsFromStore(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	first := newTestRegistry(t, store)
	svc, _ := first.Get(ctx, "alice")
	_, _ = svc.AwardXP(ctx, domain.EventFollowupOnTime, "call back")

	second := newTestRegistry(t, store)
	again, err := second.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(15), again.State().XP)
}

func TestRegistry_EvictionReloadsState(t *testing.T) {
	store := newMemStore()
	reg := newTestRegistry(t, store, gamification.WithCacheSize(1))
	ctx := context.Background()

	alice, _ := reg.Get(ctx, "alice")
	_, _ = alice.AwardXP(ctx, domain.EventCreateLead, "lead")

	_, _ = reg.Get(ctx, "bob") // evicts alice
	assert.Equal(t, 1, reg.Loaded())

	reloaded, err := reg.Get(ctx, "alice")
	require.NoError(t, err)
	assert.NotSame(t, alice, reloaded)
	assert.Equal(t, int64(10), reloaded.State().XP)
	assert.Nil(t, reloaded.LastAward(), "transient feedback dropped on eviction")
}

func TestRegistry_EvictedServiceDoesNotOverwriteReplacement(t *testing.T) {
	store := newMemStore()
	reg := newTestRegistry(t, store, gamification.WithCacheSize(1))
	ctx := context.Background()

	held, err := reg.Get(ctx, "alice")
	require.NoError(t, err)
	_, _ = reg.Get(ctx, "bob") // evicts alice while held is still in use
	fresh, err := reg.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotSame(t, held, fresh)

	_, err = fresh.AwardXP(ctx, domain.EventWinOpportunity, "won via fresh")
	require.NoError(t, err)
	_, err = held.AwardXP(ctx, domain.EventWinOpportunity, "won via held")
	require.NoError(t, err)

	durable := store.stored(t, gamification.StateKey("alice"))
	assert.Equal(t, int64(50), durable.XP)
	assert.Len(t, durable.History, 2)

	reloaded := newTestRegistry(t, store)
	alice, err := reloaded.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(50), alice.State().XP)
}

func TestRegistry_SharedStoreAcrossRegistries(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	server := newTestRegistry(t, store)
	cli := newTestRegistry(t, store)

	onServer, err := server.Get(ctx, "alice")
	require.NoError(t, err)
	onCLI, err := cli.Get(ctx, "alice")
	require.NoError(t, err)

	_, err = onServer.AwardXP(ctx, domain.EventWinOpportunity, "server")
	require.NoError(t, err)
	_, err = onCLI.AwardXP(ctx, domain.EventWinOpportunity, "cli")
	require.NoError(t, err)
	_, err = onServer.AwardXP(ctx, domain.EventCreateLead, "server again")
	require.NoError(t, err)

	durable := store.stored(t, gamification.StateKey("alice"))
	assert.Equal(t, int64(60), durable.XP)
	assert.Len(t, durable.History, 3)
	assert.Equal(t, int64(60), onServer.State().XP)
}

func TestRegistry_CancelledContext(t *testing.T) {
	reg := newTestRegistry(t, newMemStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reg.Get(ctx, "alice")
	require.ErrorIs(t, err, context.Canceled)
}

type listingStore struct{ *memStore }

func (l listingStore) Keys(_ context.Context, prefix string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var keys []string
	for k := range l.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func TestRegistry_Profiles(t *testing.T) {
	store := newMemStore()
	store.data[gamification.StateKey("zoe")] = []byte("{}")
	store.data[gamification.StateKey("alice")] = []byte("{}")
	store.data["unrelated"] = []byte("{}")

	reg, err := gamification.NewRegistry(listingStore{store})
	require.NoError(t, err)
	profiles, err := reg.Profiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "zoe"}, profiles)

	plain := newTestRegistry(t, store)
	_, err = plain.Profiles(context.Background())
	assert.ErrorIs(t, err, errors.ErrUnsupported)
}

func TestRegistry_RulesAndCatalog(t *testing.T) {
	reg := newTestRegistry(t, newMemStore())
	assert.Equal(t, gamification.DefaultRules(), reg.Rules())
	assert.Equal(t, gamification.DefaultCatalog(), reg.Catalog())
}
