// Package orchestrator sequences the full run (spec §4.8): load channel
// config, build or reuse the local index, match openings to candidates,
// deduplicate, enrich, and persist per-opening video files plus the final
// results summary.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chessopenings/video-indexer/internal/dedup"
	"github.com/chessopenings/video-indexer/internal/enrich"
	"github.com/chessopenings/video-indexer/internal/indexer"
	"github.com/chessopenings/video-indexer/internal/matcher"
	"github.com/chessopenings/video-indexer/internal/metrics"
	"github.com/chessopenings/video-indexer/internal/model"
	"github.com/chessopenings/video-indexer/internal/openings"
	"github.com/chessopenings/video-indexer/internal/prefilter"
	"github.com/chessopenings/video-indexer/internal/rss"
	"github.com/chessopenings/video-indexer/internal/store"
	"github.com/chessopenings/video-indexer/internal/youtube"
)

// progressInterval is how often the matching phase logs progress
// (spec §4.8: "every ~2 seconds").
const progressInterval = 2 * time.Second

// Paths collects every file-system location the run reads from or writes to
// (spec §6).
type Paths struct {
	ChannelConfig string
	IndexSnapshot string
	Cache         string
	VideosDir     string
	Checkpoint    string
	Summary       string
	ConsolidatedIndex string
}

// Options configures one run (spec §6 CLI surface).
type Options struct {
	ECOFilter     string
	ForceRebuild  bool
	Resume        bool
	BatchSize     int
	RequestsPerSecond float64
	RateLimitEnabled  bool
	// MaxResults overrides matcher.TopN, the number of videos kept per
	// opening (SPEC_FULL.md Open Question Resolution #1; spec §6
	// config.maxResults). Non-positive falls back to matcher.TopN.
	MaxResults int
}

// Orchestrator wires every component together for one run.
type Orchestrator struct {
	Client  *youtube.Client
	Catalog openings.Catalog
	Fetcher rss.Fetcher
	Logger  *zap.Logger
	Paths   Paths
	// Metrics is optional; when set, matching and enrichment outcomes are
	// recorded on it (spec §6 --metrics-addr).
	Metrics *metrics.Registry
}

// Run executes the full sequence described in spec §4.8 and returns the
// results summary. A nil error with a non-zero exit-worthy condition is
// signaled via the returned error wrapping xerrors sentinels; callers map
// that to the process exit codes in spec §6.
func (o *Orchestrator) Run(ctx context.Context, opts Options, channels []openings.TrustedChannel) (model.ResultsSummary, error) {
	runID := uuid.NewString()
	startedAt := time.Now()
	summary := model.ResultsSummary{RunID: runID, StartedAt: startedAt, Metrics: map[string]any{}}

	tierByChannel := make(map[string]openings.QualityTier, len(channels))
	channelIDs := make([]string, 0, len(channels))
	for _, c := range channels {
		tierByChannel[c.ChannelID] = c.QualityTier
		channelIDs = append(channelIDs, c.ChannelID)
	}
	tierOf := func(channelID string) openings.QualityTier {
		if tier, ok := tierByChannel[channelID]; ok {
			return tier
		}
		return openings.TierStandard
	}

	idx, err := o.loadOrBuildIndex(ctx, opts, channelIDs)
	if err != nil {
		summary.FinishedAt = time.Now()
		return summary, err
	}

	catalogOpenings, err := o.Catalog.Openings(opts.ECOFilter)
	if err != nil {
		summary.FinishedAt = time.Now()
		return summary, fmt.Errorf("load catalog: %w", err)
	}

	pending := make([]openings.Opening, 0, len(catalogOpenings))
	for _, op := range catalogOpenings {
		if o.Catalog.HasExistingVideos(op.FEN) {
			summary.Skipped++
			continue
		}
		pending = append(pending, op)
	}

	allVideos := flattenIndex(idx)
	candidateResult := prefilter.FilterBatch(allVideos, tierOf)
	if o.Logger != nil {
		o.Logger.Info("pre-filter complete",
			zap.Int("total_input", candidateResult.TotalInput),
			zap.Int("rejected", candidateResult.RejectedCount),
			zap.Float64("reduction_percentage", candidateResult.ReductionPercentage))
	}

	matchesByOpening, fenOrder := o.resumeOrMatch(opts, pending, candidateResult.Candidates, tierOf)

	checkpoint := buildCheckpoint(matchesByOpening, fenOrder)
	if err := store.WriteCheckpoint(o.Paths.Checkpoint, checkpoint); err != nil {
		o.logWarn("write matches checkpoint", err)
	}

	dedupResult := dedup.Build(fenOrder, matchesByOpening)

	cache, err := store.LoadCache(o.Paths.Cache)
	if err != nil {
		o.logWarn("load enrichment cache", err)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = enrich.DefaultBatchSize
	}

	enrichResult := enrich.Enrich(ctx, dedupResult.UniqueVideos, cache, tierOf, batchSize, time.Now, nil)
	summary.Metrics["cached"] = enrichResult.Cached
	summary.Metrics["newlyEnriched"] = enrichResult.NewlyEnriched
	for _, e := range enrichResult.Errors {
		summary.Errors = append(summary.Errors, e)
	}

	if o.Metrics != nil {
		o.Metrics.VideosEnriched.Add(float64(len(enrichResult.Enriched)))
		o.Metrics.CacheHits.Add(float64(enrichResult.Cached))
		o.Metrics.CacheMisses.Add(float64(enrichResult.NewlyEnriched))
	}

	enrichedByID := make(map[string]model.EnrichedVideo, len(enrichResult.Enriched))
	for _, e := range enrichResult.Enriched {
		enrichedByID[e.ID] = e
	}

	now := time.Now()
	consolidated := make(map[string]model.VideoFile)

	for _, op := range pending {
		fens := matchesByOpening[op.FEN]
		videos := make([]model.EnrichedVideo, 0, len(fens))
		for _, m := range fens {
			if e, ok := enrichedByID[m.Video.Video.ID]; ok {
				e.Analysis.RelevanceScore = m.Score
				videos = append(videos, e)
			}
		}

		file := model.NewVideoFile(op.FEN, op.Name, op.ECO, videos, now)
		if err := store.WriteVideoFile(o.Paths.VideosDir, file); err != nil {
			summary.Errors = append(summary.Errors, model.ErrorRecord{Scope: op.FEN, Message: err.Error()})
			continue
		}
		consolidated[op.FEN] = file
		summary.Processed++
		summary.VideosAdded += len(videos)
	}

	if o.Paths.ConsolidatedIndex != "" {
		if err := store.WriteConsolidatedIndex(o.Paths.ConsolidatedIndex, consolidated); err != nil {
			o.logWarn("write consolidated index", err)
		}
	}

	if err := indexer.SaveIndex(idx, enrichedByID, o.Paths.IndexSnapshot, now); err != nil {
		o.logWarn("save index snapshot", err)
	}

	summary.FinishedAt = time.Now()
	if err := store.WriteSummary(o.Paths.Summary, summary); err != nil {
		o.logWarn("write results summary", err)
	}

	return summary, nil
}

func (o *Orchestrator) loadOrBuildIndex(ctx context.Context, opts Options, channelIDs []string) (*indexer.LocalIndex, error) {
	if !opts.ForceRebuild && store.IsIndexRecent(o.Paths.IndexSnapshot, time.Now()) {
		idx, _, _, err := indexer.LoadIndex(o.Paths.IndexSnapshot)
		if err == nil {
			if o.Fetcher != nil {
				indexer.UpdateFromRSS(ctx, idx, o.Fetcher, channelIDs, o.Logger)
			}
			return idx, nil
		}
		o.logWarn("load recent index snapshot", err)
	}

	idx, _, err := indexer.BuildLocalIndex(ctx, o.Client, channelIDs, o.Logger)
	if err != nil {
		return idx, err
	}
	return idx, nil
}

// resumeOrMatch honors spec §6's --resume flag: when set, openings already
// present in a previously written matches checkpoint are reused as-is and
// only the remaining openings go through matchWithProgress. First-seen
// order (spec §5) always follows the pending slice's order, never the
// checkpoint's, so resuming never reorders dedup's video precedence.
func (o *Orchestrator) resumeOrMatch(opts Options, pending []openings.Opening, candidates []model.Video, tierOf matcher.TierLookup) (map[string][]model.Match, []string) {
	var resumed map[string][]model.Match
	if opts.Resume {
		checkpoint, exists, err := store.LoadCheckpoint(o.Paths.Checkpoint)
		if err != nil {
			o.logWarn("load matches checkpoint", err)
		} else if exists {
			resumed = checkpoint.Matches
		}
	}

	matchesByOpening := make(map[string][]model.Match, len(pending))
	fenOrder := make([]string, 0, len(pending))
	toMatch := make([]openings.Opening, 0, len(pending))

	for _, op := range pending {
		if m, ok := resumed[op.FEN]; ok {
			matchesByOpening[op.FEN] = m
			fenOrder = append(fenOrder, op.FEN)
			continue
		}
		toMatch = append(toMatch, op)
		fenOrder = append(fenOrder, op.FEN)
	}

	if o.Logger != nil && len(resumed) > 0 {
		o.Logger.Info("resumed openings from checkpoint",
			zap.Int("resumed", len(pending)-len(toMatch)),
			zap.Int("remaining", len(toMatch)))
	}

	freshMatches, _ := o.matchWithProgress(toMatch, candidates, tierOf, opts.MaxResults)
	for fen, m := range freshMatches {
		matchesByOpening[fen] = m
	}

	return matchesByOpening, fenOrder
}

func (o *Orchestrator) matchWithProgress(pending []openings.Opening, candidates []model.Video, tierOf matcher.TierLookup, maxResults int) (map[string][]model.Match, []string) {
	matchesByOpening := make(map[string][]model.Match, len(pending))
	fenOrder := make([]string, 0, len(pending))

	lastLog := time.Now()
	runningMatches := 0
	start := time.Now()

	for i, op := range pending {
		matches := matcher.MatchOpening(op, candidates, tierOf, maxResults)
		matchesByOpening[op.FEN] = matches
		fenOrder = append(fenOrder, op.FEN)
		runningMatches += len(matches)
		if o.Metrics != nil {
			o.Metrics.MatchesPerOpening.Observe(float64(len(matches)))
		}

		if o.Logger != nil && time.Since(lastLog) >= progressInterval {
			processed := i + 1
			elapsed := time.Since(start)
			rate := float64(processed) / elapsed.Seconds()
			remaining := len(pending) - processed
			var eta time.Duration
			if rate > 0 {
				eta = time.Duration(float64(remaining)/rate) * time.Second
			}
			o.Logger.Info("matching progress",
				zap.Int("processed", processed),
				zap.Int("total", len(pending)),
				zap.Float64("rate_per_sec", rate),
				zap.Duration("eta", eta),
				zap.Int("running_matches", runningMatches))
			lastLog = time.Now()
		}
	}

	return matchesByOpening, fenOrder
}

func buildCheckpoint(matchesByOpening map[string][]model.Match, fenOrder []string) model.Checkpoint {
	totalInstances := 0
	matchesCount := 0
	for _, fen := range fenOrder {
		matches := matchesByOpening[fen]
		matchesCount += len(matches)
		totalInstances += len(matches)
	}

	return model.Checkpoint{
		Timestamp:           time.Now(),
		Phase:               "matching",
		OpeningsCount:        len(fenOrder),
		MatchesCount:         matchesCount,
		TotalVideoInstances:  totalInstances,
		Matches:              matchesByOpening,
	}
}

func flattenIndex(idx *indexer.LocalIndex) []model.Video {
	var out []model.Video
	for _, channelID := range idx.Channels() {
		out = append(out, idx.Videos(channelID)...)
	}
	return out
}

func (o *Orchestrator) logWarn(operation string, err error) {
	if o.Logger == nil {
		return
	}
	o.Logger.Warn(operation, zap.Error(err))
}
