// Package redisstore keeps gamification state in Redis, one hash per
// namespaced key holding the document and its version. It is the
// shared-storage alternative to the sqlite store.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/salescoach/coach/internal/domain"
)

// Store implements domain.StateStore using Redis.
type Store struct {
	client *redis.Client
	prefix string
}

var _ domain.StateStore = (*Store)(nil)

// New creates a store backed by Redis. Every key is stored under prefix.
func New(addr, password string, db int, prefix string) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{client: rdb, prefix: prefix}
}

// Hash fields of a stored document.
const (
	fieldData    = "data"
	fieldVersion = "version"
)

// Load returns the document stored under key and its version,
// or (nil, 0, nil) if absent.
func (s *Store) Load(ctx context.Context, key string) ([]byte, int64, error) {
	fields, err := s.client.HGetAll(ctx, s.prefix+key).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("redis hgetall %s: %w", key, err)
	}
	data, ok := fields[fieldData]
	if !ok {
		return nil, 0, nil
	}
	version, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("redis %s: bad version %q", key, fields[fieldVersion])
	}
	return []byte(data), version, nil
}

// Save writes the document under key if its stored version equals expected,
// using WATCH so a concurrent writer aborts the transaction. Values never
// expire.
func (s *Store) Save(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	k := s.prefix + key
	next := expected + 1

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, k, fieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != expected {
			return domain.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, fieldData, value, fieldVersion, next)
			return nil
		})
		return err
	}, k)

	switch {
	case errors.Is(err, domain.ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return 0, fmt.Errorf("save %s at version %d: %w", key, expected, domain.ErrVersionConflict)
	case err != nil:
		return 0, fmt.Errorf("redis save %s: %w", key, err)
	}
	return next, nil
}

// Delete removes key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys starting with prefix, without the store prefix.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(s.prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the client's connections.
func (s *Store) Close() error {
	return s.client.Close()
}
