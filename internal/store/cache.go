// Package store persists range API responses in a local SQLite database.
// Only public breach data is cached, keyed by the 5-character hash prefix
// that is disclosed to the API anyway. Passwords and full digests are
// never written.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// migrations is an ordered list of SQL statements applied on startup.
// Each entry is idempotent (IF NOT EXISTS) so re-running is safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS range_cache (
		prefix     TEXT PRIMARY KEY,
		body       TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	)`,
}

var nowFn = time.Now

// RangeCache is a SQLite-backed cache of range API responses.
type RangeCache struct {
	db  *sql.DB
	ttl time.Duration
}

// NewRangeCache opens (or creates) the cache database at path and runs
// migrations. A zero ttl means entries never expire.
func NewRangeCache(path string, ttl time.Duration) (*RangeCache, error) {
	dsn := fmt.Sprintf("%s?_journal=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite handles one writer at a time.

	c := &RangeCache{db: db, ttl: ttl}
	if err := c.migrate(); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return c, nil
}

func (c *RangeCache) migrate() error {
	for _, stmt := range migrations {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (c *RangeCache) Close() error { return c.db.Close() }

// Get returns the cached response body for prefix if present and fresh.
// Any storage error is logged and treated as a miss so a broken cache
// never blocks a check.
func (c *RangeCache) Get(ctx context.Context, prefix string) (string, bool) {
	var body, fetchedAt string
	err := c.db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM range_cache WHERE prefix = ?`, prefix).
		Scan(&body, &fetchedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Warn().Err(err).Msg("Range cache read failed")
		}
		return "", false
	}

	if c.ttl > 0 {
		when, err := time.Parse(time.RFC3339, fetchedAt)
		if err != nil || nowFn().UTC().Sub(when) > c.ttl {
			return "", false
		}
	}
	return body, true
}

// Put stores (or replaces) the response body for prefix.
func (c *RangeCache) Put(ctx context.Context, prefix, body string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO range_cache (prefix, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(prefix) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		prefix, body, nowFn().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store range response: %w", err)
	}
	return nil
}

// Prune removes entries older than the cache TTL. A zero ttl is a no-op.
func (c *RangeCache) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	cutoff := nowFn().UTC().Add(-c.ttl).Format(time.RFC3339)
	res, err := c.db.ExecContext(ctx, `DELETE FROM range_cache WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune range cache: %w", err)
	}
	return res.RowsAffected()
}
