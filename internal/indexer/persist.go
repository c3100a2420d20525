package indexer

import (
	"time"

	"github.com/chessopenings/video-indexer/internal/model"
	"github.com/chessopenings/video-indexer/internal/store"
)

// SaveIndex serializes the local index and the associated enriched map
// (spec §4.2).
func SaveIndex(idx *LocalIndex, enriched map[string]model.EnrichedVideo, path string, now time.Time) error {
	return store.WriteIndexSnapshot(path, idx.All(), enriched, now)
}

// LoadIndex deserializes a previously saved index snapshot into a fresh
// LocalIndex plus its enriched map (spec §4.2).
func LoadIndex(path string) (*LocalIndex, map[string]model.EnrichedVideo, bool, error) {
	snap, exists, err := store.ReadIndexSnapshot(path)
	if err != nil || !exists {
		return NewLocalIndex(), nil, exists, err
	}

	idx := NewLocalIndex()
	for channelID, videos := range snap.Channels {
		idx.Set(channelID, videos)
	}
	return idx, snap.Enriched, true, nil
}

// IsIndexRecent returns true if the snapshot's recorded save time (its
// saved_at field, stamped by SaveIndex) is within 7 days (spec §4.2).
func IsIndexRecent(path string, now time.Time) bool {
	return store.IsIndexRecent(path, now)
}
