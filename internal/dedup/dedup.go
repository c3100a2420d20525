// Package dedup builds the unique-video domain that the enricher consumes
// from the per-opening match groups (spec §4.6).
package dedup

import "github.com/chessopenings/video-indexer/internal/model"

// Result is the deduplicated view over a matching pass's output.
type Result struct {
	// UniqueVideos preserves first-seen order across openings (spec §5
	// "deduplication preserves first-seen order").
	UniqueVideos []model.Video
	// OpeningsByVideoID maps a video id to every opening FEN it matched.
	OpeningsByVideoID map[string][]string
}

// Build scans the flat {opening FEN -> matches} structure and produces the
// unique-video list and its reverse opening index (spec §4.6). orderedFENs
// fixes the opening iteration order so first-seen order is deterministic
// (spec §5); a map alone cannot provide that guarantee in Go.
func Build(orderedFENs []string, matchesByOpening map[string][]model.Match) Result {
	result := Result{
		OpeningsByVideoID: make(map[string][]string),
	}
	seen := make(map[string]bool)

	for _, fen := range orderedFENs {
		for _, m := range matchesByOpening[fen] {
			video := m.Video.Video
			if !seen[video.ID] {
				seen[video.ID] = true
				result.UniqueVideos = append(result.UniqueVideos, video)
			}
			result.OpeningsByVideoID[video.ID] = append(result.OpeningsByVideoID[video.ID], fen)
		}
	}

	return result
}
