// Package sqlite provides SQLite-based persistent storage for gamification state.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/salescoach/coach/internal/domain"
)

// DB wraps a SQLite connection with WAL mode and migrations.
// It implements domain.StateStore.
type DB struct {
	db *sql.DB
}

var _ domain.StateStore = (*DB)(nil)

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode and a 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// One JSON document per profile, keyed by its namespace key.
		`CREATE TABLE IF NOT EXISTS gamification_state (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			version    INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_gamification_updated ON gamification_state(updated_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── State Store ────────────────────────────────────────────────────────────

// Load returns the document stored under key and its version,
// or (nil, 0, nil) if absent.
func (d *DB) Load(ctx context.Context, key string) ([]byte, int64, error) {
	var (
		value   []byte
		version int64
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT value, version FROM gamification_state WHERE key = ?`, key,
	).Scan(&value, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", key, err)
	}
	return value, version, nil
}

// Save writes the document under key if its stored version equals expected.
// expected 0 creates the row and fails if one exists.
func (d *DB) Save(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	now := time.Now().Unix()

	var (
		res sql.Result
		err error
	)
	if expected == 0 {
		res, err = d.db.ExecContext(ctx,
			`INSERT INTO gamification_state (key, value, version, updated_at) VALUES (?, ?, 1, ?)
			 ON CONFLICT(key) DO NOTHING`,
			key, value, now,
		)
	} else {
		res, err = d.db.ExecContext(ctx,
			`UPDATE gamification_state SET value = ?, version = version + 1, updated_at = ?
			 WHERE key = ? AND version = ?`,
			value, now, key, expected,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("save %s: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("save %s: %w", key, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("save %s at version %d: %w", key, expected, domain.ErrVersionConflict)
	}
	return expected + 1, nil
}

// Delete removes key. Missing keys are ignored.
func (d *DB) Delete(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM gamification_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys with the given prefix, most recently updated first.
func (d *DB) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT key FROM gamification_state WHERE substr(key, 1, ?) = ? ORDER BY updated_at DESC, key`,
		len(prefix), prefix,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
