package store

import (
	"time"

	"github.com/chessopenings/video-indexer/internal/model"
)

// WriteCheckpoint persists the matches checkpoint at the end of the
// matching phase (spec §4.7), so enrichment interruption can still resume.
func WriteCheckpoint(path string, checkpoint model.Checkpoint) error {
	return WriteJSONAtomic(path, checkpoint)
}

// LoadCheckpoint loads a previously written matches checkpoint
// (spec §6 --resume flag).
func LoadCheckpoint(path string) (model.Checkpoint, bool, error) {
	var checkpoint model.Checkpoint
	exists, err := ReadJSON(path, &checkpoint)
	return checkpoint, exists, err
}

// WriteSummary persists the end-of-run results summary (spec §4.8, §7).
func WriteSummary(path string, summary model.ResultsSummary) error {
	return WriteJSONAtomic(path, summary)
}

// IndexSnapshot is the serialized LocalIndex + enriched map (spec §4.2,
// §4.7), used when isIndexRecent reports the on-disk snapshot as fresh.
type IndexSnapshot struct {
	SavedAt  time.Time                       `json:"saved_at"`
	Channels map[string][]model.Video        `json:"channels"`
	Enriched map[string]model.EnrichedVideo  `json:"enriched,omitempty"`
}

// WriteIndexSnapshot persists a LocalIndex + enriched map snapshot
// (spec §4.2 saveIndex).
func WriteIndexSnapshot(path string, channels map[string][]model.Video, enriched map[string]model.EnrichedVideo, savedAt time.Time) error {
	return WriteJSONAtomic(path, IndexSnapshot{SavedAt: savedAt, Channels: channels, Enriched: enriched})
}

// ReadIndexSnapshot loads a previously saved index snapshot
// (spec §4.2 loadIndex).
func ReadIndexSnapshot(path string) (IndexSnapshot, bool, error) {
	var snap IndexSnapshot
	exists, err := ReadJSON(path, &snap)
	return snap, exists, err
}

// IsIndexRecent reports whether the snapshot at path was saved within the
// last 7 days (spec §4.2).
func IsIndexRecent(path string, now time.Time) bool {
	snap, exists, err := ReadIndexSnapshot(path)
	if err != nil || !exists {
		return false
	}
	return now.Sub(snap.SavedAt) < 7*24*time.Hour
}
