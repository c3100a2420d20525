package store

import (
	"time"

	"github.com/chessopenings/video-indexer/internal/model"
)

// CacheTTL is the enrichment cache entry lifetime (spec §3, §4.6: 7 days).
const CacheTTL = 7 * 24 * time.Hour

const cacheVersion = "1"

// CacheMeta is the top-level metadata of the enrichment cache file.
// Nested separately from entries to avoid key-space collisions between
// video ids and metadata field names (SPEC_FULL.md open-question
// resolution).
type CacheMeta struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Version     string    `json:"version"`
}

// CacheFile is the on-disk shape of the enrichment cache (spec §4.7):
// {meta, entries}.
type CacheFile struct {
	Meta    CacheMeta                     `json:"meta"`
	Entries map[string]model.EnrichedVideo `json:"entries"`
}

// Cache is the in-memory, file-backed EnrichmentCache (spec §3).
type Cache struct {
	path    string
	entries map[string]model.EnrichedVideo
}

// LoadCache reads the cache file. A missing or unreadable cache starts
// empty without error (spec §4.7).
func LoadCache(path string) (*Cache, error) {
	var file CacheFile
	exists, err := ReadJSON(path, &file)
	if err != nil || !exists {
		return &Cache{path: path, entries: make(map[string]model.EnrichedVideo)}, nil
	}
	if file.Entries == nil {
		file.Entries = make(map[string]model.EnrichedVideo)
	}
	return &Cache{path: path, entries: file.Entries}, nil
}

// Get returns a cached entry if present and still within TTL (spec §3:
// "every entry's indexedAt is within the TTL; expired entries are
// re-fetched").
func (c *Cache) Get(videoID string, now time.Time) (model.EnrichedVideo, bool) {
	entry, ok := c.entries[videoID]
	if !ok {
		return model.EnrichedVideo{}, false
	}
	if now.Sub(entry.Metadata.IndexedAt) >= CacheTTL {
		return model.EnrichedVideo{}, false
	}
	entry.Metadata.Cached = true
	return entry, true
}

// Put upserts an enrichment cache entry.
func (c *Cache) Put(videoID string, enriched model.EnrichedVideo) {
	c.entries[videoID] = enriched
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return len(c.entries) }

// Flush persists the cache atomically (spec §4.6: "after every batch,
// persist the cache"; §5: single-writer, atomic replace).
func (c *Cache) Flush(now time.Time) error {
	return WriteJSONAtomic(c.path, CacheFile{
		Meta:    CacheMeta{LastUpdated: now, Version: cacheVersion},
		Entries: c.entries,
	})
}
