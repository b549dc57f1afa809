// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robera-dev/guide-tui/internal/github"
)

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRepo() *github.RepoData {
	return &github.RepoData{
		Name:        "hub",
		Description: "smart home",
		Structure:   []github.Entry{{Path: "src", Type: "dir"}},
		Languages:   map[string]int64{"Go": 1000},
	}
}

func TestStore_PutGet(t *testing.T) {
	store := openTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a/hub", testRepo()))

	got, err := store.Get(ctx, "a/hub")
	require.NoError(t, err)
	assert.Equal(t, "hub", got.Name)
	assert.Equal(t, int64(1000), got.Languages["Go"])
	assert.Len(t, got.Structure, 1)
}

func TestStore_Miss(t *testing.T) {
	store := openTestStore(t, time.Hour)

	_, err := store.Get(context.Background(), "nobody/nothing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Expiry(t *testing.T) {
	store := openTestStore(t, 1*time.Nanosecond)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a/hub", testRepo()))
	time.Sleep(10 * time.Millisecond)

	_, err := store.Get(ctx, "a/hub")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestStore_Replace(t *testing.T) {
	store := openTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a/hub", testRepo()))

	updated := testRepo()
	updated.Description = "updated"
	require.NoError(t, store.Put(ctx, "a/hub", updated))

	got, err := store.Get(ctx, "a/hub")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Description)
}

func TestStore_Purge(t *testing.T) {
	store := openTestStore(t, 1*time.Nanosecond)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a/old", testRepo()))
	time.Sleep(10 * time.Millisecond)

	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, "a/old")
	assert.ErrorIs(t, err, ErrNotFound)
}

// countingAnalyzer records how many fetches reach the upstream.
type countingAnalyzer struct {
	calls int
	data  *github.RepoData
	err   error
}

func (c *countingAnalyzer) Analyze(_ context.Context, _ string) (*github.RepoData, error) {
	c.calls++
	return c.data, c.err
}

func TestAnalyze_CachesFetch(t *testing.T) {
	store := openTestStore(t, time.Hour)
	ctx := context.Background()
	fetcher := &countingAnalyzer{data: testRepo()}

	got, err := store.Analyze(ctx, fetcher, "https://github.com/a/hub")
	require.NoError(t, err)
	assert.Equal(t, "hub", got.Name)
	assert.Equal(t, 1, fetcher.calls)

	// Second call is served from the cache.
	_, err = store.Analyze(ctx, fetcher, "a/hub")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestAnalyze_RefetchesAfterExpiry(t *testing.T) {
	store := openTestStore(t, 1*time.Nanosecond)
	ctx := context.Background()
	fetcher := &countingAnalyzer{data: testRepo()}

	_, err := store.Analyze(ctx, fetcher, "a/hub")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	_, err = store.Analyze(ctx, fetcher, "a/hub")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestAnalyze_FetchError(t *testing.T) {
	store := openTestStore(t, time.Hour)
	fetcher := &countingAnalyzer{err: errors.New("api down")}

	_, err := store.Analyze(context.Background(), fetcher, "a/hub")
	assert.Error(t, err)
}

func TestAnalyze_InvalidURL(t *testing.T) {
	store := openTestStore(t, time.Hour)
	fetcher := &countingAnalyzer{data: testRepo()}

	_, err := store.Analyze(context.Background(), fetcher, "garbage")
	assert.ErrorIs(t, err, github.ErrInvalidRepoURL)
	assert.Equal(t, 0, fetcher.calls)
}

// Reopening the database preserves entries.
func TestStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	store, err := Open(path, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "a/hub", testRepo()))
	require.NoError(t, store.Close())

	reopened, err := Open(path, time.Hour)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "a/hub")
	require.NoError(t, err)
	assert.Equal(t, "hub", got.Name)
}
