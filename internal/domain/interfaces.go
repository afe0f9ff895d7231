package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// StateStore is a durable key-value slot for serialized gamification state.
// Every document carries a version that grows by one on each save, so
// writers sharing a key can detect each other.
// Implemented by infra/sqlite.DB and infra/redisstore.Store.
type StateStore interface {
	// Load returns the stored document and its version, or (nil, 0, nil)
	// when key is absent.
	Load(ctx context.Context, key string) ([]byte, int64, error)

	// Save stores value only if the stored version still equals expected
	// (0 meaning absent) and returns the new version. Otherwise it returns
	// ErrVersionConflict and leaves the stored document untouched.
	Save(ctx context.Context, key string, value []byte, expected int64) (int64, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	Close() error
}

// KeyLister is implemented by stores that can enumerate their keys.
type KeyLister interface {
	// Keys returns every stored key starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
