// Package youtube implements the quota- and rate-governed upstream client
// (spec §4.1). It wraps the official google.golang.org/api/youtube/v3 SDK
// the way the teacher's internal/service/youtube.Client does, but adds the
// reservation-before-call discipline, retry/backoff, and per-request
// timeout the spec requires, since the teacher's client is a thinner
// best-effort wrapper with quota accounting left to its caller.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/chessopenings/video-indexer/internal/metrics"
	"github.com/chessopenings/video-indexer/internal/model"
	"github.com/chessopenings/video-indexer/internal/quotaledger"
	"github.com/chessopenings/video-indexer/internal/ratelimit"
	"github.com/chessopenings/video-indexer/internal/xerrors"
)

// Quota costs per spec §4.1 / §6.
const (
	CostListPage     = 1
	CostDetailsChunk = 1
	CostSearch       = 100
	CostSearchDetail = 1
	CostChannelsList = 1

	maxDetailChunk = 50

	defaultRequestTimeout = 30 * time.Second
	defaultHistoryYears   = 15

	// maxRetryAttempts and retryBaseDelay implement spec §7's retry rule:
	// RateLimited is retryable with exponential backoff, three attempts,
	// base 1s. After exhaustion the outcome becomes Upstream.
	maxRetryAttempts = 3
	retryBaseDelay   = 1 * time.Second
)

// Order controls how listChannelUploads sorts its results.
type Order string

const (
	OrderDate     Order = "date"
	OrderRelevance Order = "relevance"
)

// ListOptions configures listChannelUploads (spec §4.1).
type ListOptions struct {
	// MaxResults is either a positive count or "all" for unlimited
	// pagination (spec §4.1). Zero means "all".
	MaxResults int
	All        bool
	PublishedAfter time.Time
	Order          Order
}

// Client is the quota- and rate-governed upstream client.
type Client struct {
	service *youtube.Service
	ledger  *quotaledger.Ledger
	limiter *ratelimit.Limiter
	metrics *metrics.Registry
	timeout time.Duration
}

// New builds a Client bound to the given QuotaLedger and Limiter (spec §9:
// both are owned objects passed in, never globals).
func New(ctx context.Context, apiKey string, ledger *quotaledger.Ledger, limiter *ratelimit.Limiter, reg *metrics.Registry) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: youtube API key is required", xerrors.ErrConfigInvalid)
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{
		service: service,
		ledger:  ledger,
		limiter: limiter,
		metrics: reg,
		timeout: defaultRequestTimeout,
	}, nil
}

// reserveAndWait reserves quota cost, then waits for a rate-limit token.
// Quota is charged before the request runs, so it is charged on failure as
// well as success (spec §4.1).
func (c *Client) reserveAndWait(ctx context.Context, cost int) error {
	if err := c.ledger.Reserve(cost); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.QuotaUsed.Set(float64(c.ledger.Used()))
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// doWithRetry runs fn, one upstream call attempt given a fresh per-attempt
// timeout context, retrying only when the attempt classifies as RateLimited
// (spec §7). Backoff is exponential starting at retryBaseDelay. Once
// attempts are exhausted, the outcome is reclassified as Upstream rather
// than surfaced as RateLimited, since the caller has no further retry to
// honor it with.
func (c *Client) doWithRetry(ctx context.Context, fn func(reqCtx context.Context) error) error {
	var classified error
	for attempt := 0; attempt < maxRetryAttempts; attempt++ {
		reqCtx, cancel := c.withTimeout(ctx)
		err := fn(reqCtx)
		cancel()
		if err == nil {
			return nil
		}

		classified = classifyError(err)
		if !errors.Is(classified, xerrors.ErrRateLimited) {
			return classified
		}
		if attempt == maxRetryAttempts-1 {
			return fmt.Errorf("%w: rate limit retries exhausted after %d attempts", xerrors.ErrUpstream, maxRetryAttempts)
		}

		delay := retryBaseDelay * time.Duration(1<<attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return classified
}

// classifyError maps a googleapi error to the spec §4.1/§7 taxonomy.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return xerrors.ErrRateLimited
		case 403:
			return xerrors.ErrForbidden
		default:
			return xerrors.Upstream(apiErr.Code)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return xerrors.ErrTimeout
	}
	return fmt.Errorf("%w: %v", xerrors.ErrUpstream, err)
}

func (c *Client) recordOutcome(endpoint string, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.RequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

// listChannelUploads enumerates every video from a channel with pagination
// and a history cutoff (spec §4.1, §4.2 step 1).
func (c *Client) ListChannelUploads(ctx context.Context, channelID string, opts ListOptions) ([]model.Video, error) {
	cutoff := opts.PublishedAfter
	if cutoff.IsZero() {
		cutoff = time.Now().AddDate(-defaultHistoryYears, 0, 0)
	}
	order := opts.Order
	if order == "" {
		order = OrderDate
	}

	uploadsPlaylist := UploadsPlaylistID(channelID)

	var out []model.Video
	pageToken := ""
	for {
		if err := c.reserveAndWait(ctx, CostListPage); err != nil {
			c.recordOutcome("playlistItems.list", err)
			return out, err
		}

		var resp *youtube.PlaylistItemListResponse
		err := c.doWithRetry(ctx, func(reqCtx context.Context) error {
			call := c.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
				PlaylistId(uploadsPlaylist).
				MaxResults(50).
				Context(reqCtx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			r, doErr := call.Do()
			if doErr != nil {
				return doErr
			}
			resp = r
			return nil
		})
		c.recordOutcome("playlistItems.list", err)
		if err != nil {
			return out, err
		}

		for _, item := range resp.Items {
			if item.ContentDetails == nil || item.ContentDetails.VideoId == "" || item.Snippet == nil {
				continue
			}
			publishedAt, _ := time.Parse(time.RFC3339, item.ContentDetails.VideoPublishedAt)
			if publishedAt.IsZero() {
				publishedAt, _ = time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			}
			if publishedAt.Before(cutoff) {
				continue
			}
			out = append(out, model.Video{
				ID:           item.ContentDetails.VideoId,
				Title:        item.Snippet.Title,
				Description:  item.Snippet.Description,
				PublishedAt:  publishedAt,
				ChannelID:    channelID,
				ChannelTitle: item.Snippet.ChannelTitle,
			})
		}

		if !opts.All && opts.MaxResults > 0 && len(out) >= opts.MaxResults {
			out = out[:opts.MaxResults]
			break
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	if order == OrderDate {
		sortVideosByPublishedAtDesc(out)
	}

	return out, nil
}

// UploadsPlaylistID derives a channel's uploads playlist ID without an
// upstream lookup: YouTube mints the uploads playlist ID by substituting
// the "UC" channel-ID prefix with "UU". This keeps listChannelUploads at
// exactly one quota unit per page with no separate channels.list call
// (spec §8 boundary: an empty channel charges exactly 1 quota unit).
func UploadsPlaylistID(channelID string) string {
	if len(channelID) >= 2 && channelID[:2] == "UC" {
		return "UU" + channelID[2:]
	}
	return channelID
}

func sortVideosByPublishedAtDesc(videos []model.Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].PublishedAt.After(videos[j].PublishedAt)
	})
}

// BatchFetchVideoDetails fetches full Video records for up to 50 ids per
// chunk (spec §4.1). It requests snippet, statistics, contentDetails,
// status, and topicDetails.
func (c *Client) BatchFetchVideoDetails(ctx context.Context, videoIDs []string) ([]model.Video, error) {
	var out []model.Video
	for _, chunk := range chunkIDs(videoIDs, maxDetailChunk) {
		if err := c.reserveAndWait(ctx, CostDetailsChunk); err != nil {
			c.recordOutcome("videos.list", err)
			return out, err
		}

		var resp *youtube.VideoListResponse
		err := c.doWithRetry(ctx, func(reqCtx context.Context) error {
			parts := []string{"snippet", "statistics", "contentDetails", "status", "topicDetails"}
			r, doErr := c.service.Videos.List(parts).Id(chunk...).Context(reqCtx).Do()
			if doErr != nil {
				return doErr
			}
			resp = r
			return nil
		})
		c.recordOutcome("videos.list", err)
		if err != nil {
			return out, err
		}

		for _, item := range resp.Items {
			out = append(out, mapVideoDetails(item))
		}
	}
	return out, nil
}

func mapVideoDetails(item *youtube.Video) model.Video {
	v := model.Video{ID: item.Id, HasEnhancedMetadata: true}

	if item.Snippet != nil {
		v.Title = item.Snippet.Title
		v.Description = item.Snippet.Description
		v.ChannelID = item.Snippet.ChannelId
		v.ChannelTitle = item.Snippet.ChannelTitle
		v.Tags = item.Snippet.Tags
		v.CategoryID = item.Snippet.CategoryId
		v.Language = item.Snippet.DefaultAudioLanguage
		if v.Language == "" {
			v.Language = item.Snippet.DefaultLanguage
		}
		if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			v.PublishedAt = t
		}
		if item.Snippet.Thumbnails != nil {
			v.Thumbnails = map[string]string{}
			if item.Snippet.Thumbnails.Default != nil {
				v.Thumbnails["default"] = item.Snippet.Thumbnails.Default.Url
			}
			if item.Snippet.Thumbnails.Medium != nil {
				v.Thumbnails["medium"] = item.Snippet.Thumbnails.Medium.Url
			}
			if item.Snippet.Thumbnails.High != nil {
				v.Thumbnails["high"] = item.Snippet.Thumbnails.High.Url
			}
		}
	}

	if item.Statistics != nil {
		v.Statistics = model.Statistics{
			Views:    int64(item.Statistics.ViewCount),
			Likes:    int64(item.Statistics.LikeCount),
			Comments: int64(item.Statistics.CommentCount),
		}
	}

	if item.ContentDetails != nil {
		v.Duration = item.ContentDetails.Duration
		v.ContentDetails = model.ContentDetails{
			Definition: item.ContentDetails.Definition,
			Caption:    item.ContentDetails.Caption == "true",
		}
	}

	if item.Status != nil {
		v.Status = item.Status.PrivacyStatus
	}

	if item.TopicDetails != nil {
		v.TopicCategories = item.TopicDetails.TopicCategories
	}

	return v
}

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}

// SearchVideos is the rare discovery fallback (spec §4.1): 100 units plus 1
// for the detail merge. Callers should avoid this in the steady-state
// channel-first pipeline.
func (c *Client) SearchVideos(ctx context.Context, query, channelID string) ([]model.Video, error) {
	if err := c.reserveAndWait(ctx, CostSearch); err != nil {
		c.recordOutcome("search.list(query)", err)
		return nil, err
	}

	var resp *youtube.SearchListResponse
	err := c.doWithRetry(ctx, func(reqCtx context.Context) error {
		call := c.service.Search.List([]string{"snippet"}).Q(query).Type("video").MaxResults(25).Context(reqCtx)
		if channelID != "" {
			call = call.ChannelId(channelID)
		}
		r, doErr := call.Do()
		if doErr != nil {
			return doErr
		}
		resp = r
		return nil
	})
	c.recordOutcome("search.list(query)", err)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	// BatchFetchVideoDetails reserves the detail-merge unit itself
	// (CostSearchDetail == CostDetailsChunk; at most 25 ids form one chunk).
	return c.BatchFetchVideoDetails(ctx, ids)
}

// SearchChannels is reserved for tooling (spec §4.1): 100 units per call.
func (c *Client) SearchChannels(ctx context.Context, query string) ([]string, error) {
	if err := c.reserveAndWait(ctx, CostSearch); err != nil {
		c.recordOutcome("search.list(channel)", err)
		return nil, err
	}

	var resp *youtube.SearchListResponse
	err := c.doWithRetry(ctx, func(reqCtx context.Context) error {
		r, doErr := c.service.Search.List([]string{"snippet"}).Q(query).Type("channel").MaxResults(10).Context(reqCtx).Do()
		if doErr != nil {
			return doErr
		}
		resp = r
		return nil
	})
	c.recordOutcome("search.list(channel)", err)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.ChannelId != "" {
			ids = append(ids, item.Id.ChannelId)
		}
	}
	return ids, nil
}
