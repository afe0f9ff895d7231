package redisstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/salescoach/coach/internal/domain"
)

// newTestStore requires a running Redis on localhost.
// Tests are skipped if the connection fails.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	prefix := fmt.Sprintf("coach-test-%d:", time.Now().UnixNano())
	store := New("localhost:6379", "", 0, prefix)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		store.Close()
		t.Skip("Skipping Redis integration test: redis not available")
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveLoadDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, version, err := store.Load(ctx, "ns/alice")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != nil || version != 0 {
		t.Fatalf("Load() of missing key = %q@%d, want nil@0", got, version)
	}

	version, err = store.Save(ctx, "ns/alice", []byte(`{"xp":10}`), 0)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if version != 1 {
		t.Errorf("Save() version = %d, want 1", version)
	}
	got, version, err = store.Load(ctx, "ns/alice")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if string(got) != `{"xp":10}` || version != 1 {
		t.Errorf("Load() = %s@%d", got, version)
	}

	keys, err := store.Keys(ctx, "ns/")
	if err != nil {
		t.Fatalf("Keys() error: %v", err)
	}
	if len(keys) != 1 || keys[0] != "ns/alice" {
		t.Errorf("Keys() = %v, want [ns/alice]", keys)
	}

	if err := store.Delete(ctx, "ns/alice"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	got, _, _ = store.Load(ctx, "ns/alice")
	if got != nil {
		t.Error("key should be gone after Delete()")
	}
}

func TestStore_SaveVersionConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Save(ctx, "ns/bob", []byte("one"), 0); err != nil {
		t.Fatalf("first Save() error: %v", err)
	}
	if _, err := store.Save(ctx, "ns/bob", []byte("stale"), 0); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("Save() over existing key error = %v, want ErrVersionConflict", err)
	}
	if _, err := store.Save(ctx, "ns/bob", []byte("two"), 1); err != nil {
		t.Fatalf("Save() at current version error: %v", err)
	}
	if _, err := store.Save(ctx, "ns/bob", []byte("stale"), 1); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("Save() at old version error = %v, want ErrVersionConflict", err)
	}

	got, version, _ := store.Load(ctx, "ns/bob")
	if string(got) != "two" || version != 2 {
		t.Errorf("Load() = %s@%d, want two@2", got, version)
	}
}

func TestStore_PingUnreachable(t *testing.T) {
	store := New("127.0.0.1:1", "", 0, "x:")
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := store.Ping(ctx); err == nil {
		t.Error("Ping() to a closed port should fail")
	}
}
