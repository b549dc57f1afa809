// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache stores fetched GitHub repository metadata in SQLite so
// repeated report requests for the same repository do not refetch.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/robera-dev/guide-tui/internal/github"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound = errors.New("cache entry not found")
	ErrExpired  = errors.New("cache entry expired")
)

// =============================================================================
// STORE
// =============================================================================

// DefaultTTL is how long a cached repository stays fresh.
const DefaultTTL = 1 * time.Hour

const schema = `
CREATE TABLE IF NOT EXISTS repos (
	key        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
);
`

// Store is a TTL cache of repository metadata keyed by "owner/repo".
// SQLite only supports one writer, so the pool is capped at a single
// connection.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// Open creates or opens the cache database at path. A zero ttl uses
// DefaultTTL.
func Open(path string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, ttl: ttl}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached metadata for key, ErrNotFound on a miss, or
// ErrExpired when the entry has outlived the TTL.
func (s *Store) Get(ctx context.Context, key string) (*github.RepoData, error) {
	var payload string
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, fetched_at FROM repos WHERE key = ?", key,
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	if time.Since(time.Unix(fetchedAt, 0)) > s.ttl {
		return nil, ErrExpired
	}

	var data github.RepoData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return &data, nil
}

// Put stores metadata for key, replacing any existing entry.
func (s *Store) Put(ctx context.Context, key string, data *github.RepoData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO repos (key, payload, fetched_at) VALUES (?, ?, ?)",
		key, string(payload), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Purge removes expired entries and returns how many were deleted.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.ttl).Unix()
	res, err := s.db.ExecContext(ctx, "DELETE FROM repos WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// =============================================================================
// CACHED ANALYZER
// =============================================================================

// Analyzer fetches repository metadata. *github.Client satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, repoURL string) (*github.RepoData, error)
}

// Analyze resolves repository metadata through the cache: a fresh hit is
// returned directly, a miss or expired entry triggers a fetch and a Put.
// Cache write failures are not fatal; the fetched data is still returned.
func (s *Store) Analyze(ctx context.Context, fetcher Analyzer, repoURL string) (*github.RepoData, error) {
	owner, repo, err := github.ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}
	key := owner + "/" + repo

	if data, err := s.Get(ctx, key); err == nil {
		return data, nil
	}

	data, err := fetcher.Analyze(ctx, repoURL)
	if err != nil {
		return nil, err
	}
	_ = s.Put(ctx, key, data)
	return data, nil
}
