package matcher

import (
	"sort"

	"github.com/chessopenings/video-indexer/internal/model"
	"github.com/chessopenings/video-indexer/internal/openings"
)

// TierLookup resolves the trust tier for a channel id, defaulting to
// standard for channels outside the trusted-channel config.
type TierLookup func(channelID string) openings.QualityTier

// MatchOpening scores every candidate video against one opening, applies the
// family safeguard and acceptance threshold, and returns at most maxResults
// matches ordered by the deterministic tie-break rule (spec §4.5). A
// non-positive maxResults falls back to TopN (SPEC_FULL.md's maxResults=10
// default, overridden by config.Batch.MaxResults).
func MatchOpening(opening openings.Opening, candidates []model.Video, tierOf TierLookup, maxResults int) []model.Match {
	if maxResults <= 0 {
		maxResults = TopN
	}

	patterns := GeneratePatterns(opening)
	if len(patterns) == 0 {
		return nil
	}

	var matches []model.Match
	for _, video := range candidates {
		result := ScoreVideo(opening, video, patterns, tierOf(video.ChannelID))
		if result.Score < AcceptanceThreshold {
			continue
		}
		matches = append(matches, model.Match{
			OpeningFEN: opening.FEN,
			Score:      result.Score,
			MatchType:  result.MatchType,
		})
		matches[len(matches)-1].Video.Video = video
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Video.Video.Statistics.Views != matches[j].Video.Video.Statistics.Views {
			return matches[i].Video.Video.Statistics.Views > matches[j].Video.Video.Statistics.Views
		}
		return matches[i].Video.Video.ID < matches[j].Video.Video.ID
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}

// MatchAll matches every opening against the channel-indexed candidate pool
// (spec §4.8). The candidate pool is typically the pre-filter's output.
func MatchAll(openingsList []openings.Opening, candidates []model.Video, tierOf TierLookup, maxResults int) map[string][]model.Match {
	result := make(map[string][]model.Match, len(openingsList))
	for _, opening := range openingsList {
		result[opening.FEN] = MatchOpening(opening, candidates, tierOf, maxResults)
	}
	return result
}
