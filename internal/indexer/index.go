// Package indexer implements the channel indexer (spec §4.2) and owns the
// in-memory LocalIndex (spec §3): channel id → ordered list of Videos, with
// no duplicate video ids within a channel's list.
package indexer

import (
	"sync"

	"github.com/chessopenings/video-indexer/internal/model"
)

// LocalIndex maps channel id to its ordered video list. It is written only
// by the indexer and the RSS poller, and read only by the matcher
// (spec §5) — the mutex exists to make concurrent indexing of multiple
// channels (bounded parallelism, spec §5) safe, not to support concurrent
// readers and writers within a phase.
type LocalIndex struct {
	mu       sync.Mutex
	channels map[string][]model.Video
	seen     map[string]map[string]bool // channelID -> videoID -> present
}

// NewLocalIndex creates an empty index.
func NewLocalIndex() *LocalIndex {
	return &LocalIndex{
		channels: make(map[string][]model.Video),
		seen:     make(map[string]map[string]bool),
	}
}

// Set replaces a channel's entire video list, used by BuildLocalIndex after
// a full enumeration. Caller-provided videos must already be deduplicated
// by id.
func (idx *LocalIndex) Set(channelID string, videos []model.Video) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.channels[channelID] = videos
	ids := make(map[string]bool, len(videos))
	for _, v := range videos {
		ids[v.ID] = true
	}
	idx.seen[channelID] = ids
}

// Append adds a video to a channel's list only if its id isn't already
// present, preserving the no-duplicate invariant (spec §3) and first-seen
// order.
func (idx *LocalIndex) Append(channelID string, video model.Video) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.seen[channelID] == nil {
		idx.seen[channelID] = make(map[string]bool)
	}
	if idx.seen[channelID][video.ID] {
		return false
	}
	idx.seen[channelID][video.ID] = true
	idx.channels[channelID] = append(idx.channels[channelID], video)
	return true
}

// Videos returns a copy of a channel's video list.
func (idx *LocalIndex) Videos(channelID string) []model.Video {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	src := idx.channels[channelID]
	out := make([]model.Video, len(src))
	copy(out, src)
	return out
}

// Channels returns the channel ids currently present in the index.
func (idx *LocalIndex) Channels() []string {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	out := make([]string, 0, len(idx.channels))
	for id := range idx.channels {
		out = append(out, id)
	}
	return out
}

// All returns a shallow snapshot of the whole index.
func (idx *LocalIndex) All() map[string][]model.Video {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	out := make(map[string][]model.Video, len(idx.channels))
	for id, videos := range idx.channels {
		cp := make([]model.Video, len(videos))
		copy(cp, videos)
		out[id] = cp
	}
	return out
}

// TotalVideos returns the total video count across all channels.
func (idx *LocalIndex) TotalVideos() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	total := 0
	for _, videos := range idx.channels {
		total += len(videos)
	}
	return total
}
