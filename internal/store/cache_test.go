package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chessopenings/video-indexer/internal/model"
)

func TestLoadCache_MissingFileStartsEmpty(t *testing.T) {
	cache, err := LoadCache(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestCache_GetReturnsEntryWithinTTL(t *testing.T) {
	cache, err := LoadCache(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.Put("v1", model.EnrichedVideo{
		Video:    model.Video{ID: "v1"},
		Metadata: model.EnrichmentMeta{IndexedAt: now},
	})

	entry, ok := cache.Get("v1", now.Add(time.Hour))
	assert.True(t, ok)
	assert.True(t, entry.Metadata.Cached, "a cache hit must be stamped Cached: true")
}

func TestCache_GetExpiresEntriesPastTTL(t *testing.T) {
	cache, err := LoadCache(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)

	indexedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.Put("v1", model.EnrichedVideo{
		Video:    model.Video{ID: "v1"},
		Metadata: model.EnrichmentMeta{IndexedAt: indexedAt},
	})

	_, ok := cache.Get("v1", indexedAt.Add(CacheTTL+time.Second))
	assert.False(t, ok)
}

func TestCache_FlushAndReloadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache, err := LoadCache(path)
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.Put("v1", model.EnrichedVideo{Video: model.Video{ID: "v1"}, Metadata: model.EnrichmentMeta{IndexedAt: now}})
	require.NoError(t, cache.Flush(now))

	reloaded, err := LoadCache(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
	entry, ok := reloaded.Get("v1", now)
	assert.True(t, ok)
	assert.Equal(t, "v1", entry.ID)
}
