package indexer

import (
	"context"

	"go.uber.org/zap"

	"github.com/chessopenings/video-indexer/internal/model"
	"github.com/chessopenings/video-indexer/internal/rss"
)

// RSSResult summarizes one updateFromRSS run (spec §4.3).
type RSSResult struct {
	NewVideos int
	Errors    []model.ErrorRecord
}

// UpdateFromRSS fetches each channel's Atom feed and appends only ids not
// already present in the indexed list for that channel (spec §4.3). Detail
// fetches for the new ids are deferred to the next indexing phase or
// enrichment; zero quota cost.
func UpdateFromRSS(ctx context.Context, idx *LocalIndex, fetcher rss.Fetcher, channelIDs []string, logger *zap.Logger) RSSResult {
	var result RSSResult

	for _, channelID := range channelIDs {
		entries, err := rss.Fetch(ctx, fetcher, channelID)
		if err != nil {
			if logger != nil {
				logger.Warn("rss poll failed", zap.String("channel_id", channelID), zap.Error(err))
			}
			result.Errors = append(result.Errors, model.ErrorRecord{Scope: channelID, Message: err.Error()})
			continue
		}

		for _, entry := range entries {
			video := model.Video{
				ID:           entry.VideoID,
				Title:        entry.Title,
				PublishedAt:  entry.PublishedAt,
				ChannelID:    channelID,
				ChannelTitle: entry.ChannelTitle,
			}
			if idx.Append(channelID, video) {
				result.NewVideos++
			}
		}
	}

	return result
}
