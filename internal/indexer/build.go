package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chessopenings/video-indexer/internal/model"
	"github.com/chessopenings/video-indexer/internal/xerrors"
	"github.com/chessopenings/video-indexer/internal/youtube"
)

// maxConcurrentChannels bounds channel-indexing parallelism (spec §5: ≤4).
const maxConcurrentChannels = 4

// BuildResult summarizes one buildLocalIndex run (spec §4.2).
type BuildResult struct {
	TotalVideos    int
	ChannelsCovered int
	Errors         []model.ErrorRecord
}

// Uploader is the subset of the upstream client the indexer needs.
type Uploader interface {
	ListChannelUploads(ctx context.Context, channelID string, opts youtube.ListOptions) ([]model.Video, error)
	BatchFetchVideoDetails(ctx context.Context, videoIDs []string) ([]model.Video, error)
}

// BuildLocalIndex enumerates every video from each trusted channel
// (spec §4.2): list uploads, batch-fetch details, left-join onto the
// partials, and store the merged list. A failing channel is logged and
// accumulated without aborting the whole build, except when zero channels
// succeed and the first error looks like a rate-limit signal, in which case
// the whole phase fails with ErrQuotaExceeded.
func BuildLocalIndex(ctx context.Context, client Uploader, channelIDs []string, logger *zap.Logger) (*LocalIndex, BuildResult, error) {
	idx := NewLocalIndex()

	type channelOutcome struct {
		channelID string
		videos    []model.Video
		err       error
	}
	outcomes := make([]channelOutcome, len(channelIDs))

	sem := make(chan struct{}, maxConcurrentChannels)
	g, gctx := errgroup.WithContext(ctx)

	for i, channelID := range channelIDs {
		i, channelID := i, channelID
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			videos, err := indexOneChannel(gctx, client, channelID)
			outcomes[i] = channelOutcome{channelID: channelID, videos: videos, err: err}
			return nil // per-channel errors never abort the group
		})
	}
	_ = g.Wait()

	var result BuildResult
	var firstErr error
	for _, o := range outcomes {
		if o.err != nil {
			if logger != nil {
				logger.Warn("channel indexing failed", zap.String("channel_id", o.channelID), zap.Error(o.err))
			}
			result.Errors = append(result.Errors, model.ErrorRecord{Scope: o.channelID, Message: o.err.Error()})
			if firstErr == nil {
				firstErr = o.err
			}
			continue
		}
		idx.Set(o.channelID, o.videos)
		result.ChannelsCovered++
		result.TotalVideos += len(o.videos)
	}

	if result.ChannelsCovered == 0 && len(channelIDs) > 0 && xerrors.LooksLikeRateLimitSignal(firstErr) {
		return idx, result, fmt.Errorf("%w: all channels failed, first error: %v", xerrors.ErrQuotaExceeded, firstErr)
	}

	return idx, result, nil
}

func indexOneChannel(ctx context.Context, client Uploader, channelID string) ([]model.Video, error) {
	partials, err := client.ListChannelUploads(ctx, channelID, youtube.ListOptions{All: true, Order: youtube.OrderDate})
	if err != nil {
		return nil, fmt.Errorf("list uploads for %s: %w", channelID, err)
	}
	if len(partials) == 0 {
		return nil, nil
	}

	ids := make([]string, len(partials))
	byID := make(map[string]model.Video, len(partials))
	for i, v := range partials {
		ids[i] = v.ID
		byID[v.ID] = v
	}

	details, err := client.BatchFetchVideoDetails(ctx, ids)
	if err != nil {
		// Partial data is still usable; the partials carry fallback fields
		// (spec §4.2 step 3), so this is not fatal to the channel.
		return mergeLeftJoin(partials, nil), nil
	}

	return mergeLeftJoin(partials, details), nil
}

// mergeLeftJoin left-joins detail records onto the partial listing,
// preserving all partial fields as fallbacks (spec §4.2 step 3).
func mergeLeftJoin(partials, details []model.Video) []model.Video {
	detailByID := make(map[string]model.Video, len(details))
	for _, d := range details {
		detailByID[d.ID] = d
	}

	merged := make([]model.Video, len(partials))
	for i, p := range partials {
		d, ok := detailByID[p.ID]
		if !ok {
			merged[i] = p
			merged[i].HasEnhancedMetadata = false
			continue
		}
		merged[i] = leftJoinOne(p, d)
	}
	return merged
}

func leftJoinOne(partial, detail model.Video) model.Video {
	out := detail
	out.HasEnhancedMetadata = true

	if out.Title == "" {
		out.Title = partial.Title
	}
	if out.Description == "" {
		out.Description = partial.Description
	}
	if out.PublishedAt.IsZero() {
		out.PublishedAt = partial.PublishedAt
	}
	if out.ChannelID == "" {
		out.ChannelID = partial.ChannelID
	}
	if out.ChannelTitle == "" {
		out.ChannelTitle = partial.ChannelTitle
	}
	return out
}
