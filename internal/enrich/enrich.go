// Package enrich derives per-video analysis fields from already-fetched
// metadata and manages the enrichment cache lifecycle (spec §4.6).
package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/chessopenings/video-indexer/internal/model"
	"github.com/chessopenings/video-indexer/internal/openings"
	"github.com/chessopenings/video-indexer/internal/prefilter"
	"github.com/chessopenings/video-indexer/internal/store"
)

const (
	// DefaultBatchSize is the unique-video enrichment batch size (spec §4.6).
	DefaultBatchSize = 50

	// BatchPacingDelay is the inter-batch delay, unified to the flat-path
	// value per SPEC_FULL.md's open-question resolution.
	BatchPacingDelay = 100 * time.Millisecond

	enrichmentVersion = "1"
	enrichmentSource  = "core-indexer"
)

// Progress is emitted after each video is processed within a batch
// (spec §4.6: "{processed, total, current, fromCache, percentage}").
type Progress struct {
	Processed  int
	Total      int
	Current    string
	FromCache  bool
	Percentage float64
}

// ProgressFunc is the injectable progress callback.
type ProgressFunc func(Progress)

// TierLookup resolves a channel's configured instructor-quality tier.
type TierLookup func(channelID string) openings.QualityTier

// Result is the aggregate outcome of one enrichment pass (spec §8 scenario 6:
// "{cached, newlyEnriched}").
type Result struct {
	Enriched      []model.EnrichedVideo
	Cached        int
	NewlyEnriched int
	Errors        []model.ErrorRecord
}

// Clock abstracts "now" so tests can supply a fixed instant. The
// orchestrator's Run passes time.Now.
type Clock func() time.Time

// Enrich processes the unique-video list in fixed-size batches, reusing
// cache entries younger than store.CacheTTL and deriving analysis fields for
// the rest, persisting the cache after every batch (spec §4.6). Deriving one
// video's fields has no error path, so nothing is flushed per item, and a
// panic inside a batch is not recovered. It never performs an additional
// upstream call: enrichment
// operates purely on fields already present on each model.Video.
func Enrich(ctx context.Context, videos []model.Video, cache *store.Cache, tierOf TierLookup, batchSize int, now Clock, onProgress ProgressFunc) Result {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var result Result
	total := len(videos)
	processed := 0

	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		batch := videos[start:end]

		for _, video := range batch {
			nowT := now()
			var fromCache bool
			if cached, ok := cache.Get(video.ID, nowT); ok {
				fromCache = true
				result.Cached++
				result.Enriched = append(result.Enriched, cached)
			} else {
				enriched := enrichOne(video, tierOf(video.ChannelID), nowT)
				cache.Put(video.ID, enriched)
				result.NewlyEnriched++
				result.Enriched = append(result.Enriched, enriched)
			}

			processed++
			if onProgress != nil {
				onProgress(Progress{
					Processed:  processed,
					Total:      total,
					Current:    video.ID,
					FromCache:  fromCache,
					Percentage: float64(processed) / float64(max(total, 1)) * 100,
				})
			}
		}

		if err := cache.Flush(now()); err != nil {
			result.Errors = append(result.Errors, model.ErrorRecord{Scope: "enrichment-cache", Message: err.Error()})
		}

		select {
		case <-ctx.Done():
			return result
		default:
		}

		if end < total {
			time.Sleep(BatchPacingDelay)
		}
	}

	return result
}

// enrichOne derives all analysis fields for a single video (spec §4.6).
func enrichOne(video model.Video, tier openings.QualityTier, now time.Time) model.EnrichedVideo {
	analysis := model.Analysis{
		DifficultyLevel:   classifyDifficulty(video),
		ContentType:       classifyContentType(video),
		VideoQuality:      classifyVideoQuality(video),
		EngagementMetrics: computeEngagement(video),
		InstructorQuality: instructorQualityFor(tier),
	}
	analysis.EducationalValue = classifyEducationalValue(video, analysis.EngagementMetrics)

	return model.EnrichedVideo{
		Video:    video,
		WatchURL: model.WatchURLFor(video.ID),
		Analysis: analysis,
		Metadata: model.EnrichmentMeta{
			IndexedAt: now,
			Source:    enrichmentSource,
			Version:   enrichmentVersion,
			Cached:    false,
		},
	}
}

func instructorQualityFor(tier openings.QualityTier) model.Quality {
	switch tier {
	case openings.TierPremium:
		return model.QualityHigh
	case openings.TierStandard:
		return model.QualityMedium
	default:
		return model.QualityMedium
	}
}

func haystackOf(video model.Video) string {
	return strings.ToLower(video.Title + " " + video.Description + " " + strings.Join(video.Tags, " "))
}

func classifyDifficulty(video model.Video) model.DifficultyLevel {
	h := haystackOf(video)
	switch {
	case containsAny(h, "beginner", "basics", "introduction", "intro to"):
		return model.DifficultyBeginner
	case containsAny(h, "advanced", "master", "expert", "grandmaster"):
		return model.DifficultyAdvanced
	case containsAny(h, "intermediate", "improving", "club"):
		return model.DifficultyIntermediate
	default:
		return model.DifficultyIntermediate
	}
}

func classifyContentType(video model.Video) model.ContentType {
	h := haystackOf(video)
	switch {
	case containsAny(h, "game analysis", "annotated game", "game review"):
		return model.ContentGameAnalysis
	case containsAny(h, "tutorial", "how to", "lesson"):
		return model.ContentTutorial
	case containsAny(h, "opening theory", "opening repertoire", "opening"):
		return model.ContentOpeningTheory
	case containsAny(h, "live", "stream"):
		return model.ContentLive
	default:
		return model.ContentGeneral
	}
}

func classifyVideoQuality(video model.Video) model.Quality {
	score := 0
	if strings.EqualFold(video.ContentDetails.Definition, "hd") {
		score++
	}
	if video.ContentDetails.Caption {
		score++
	}
	if video.Status == "" || video.Status == "public" {
		score++
	}
	if seconds, ok := prefilter.ParseDuration(video.Duration); ok && seconds >= 5*60 && seconds <= 45*60 {
		score++
	}

	switch {
	case score >= 4:
		return model.QualityHigh
	case score >= 3:
		return model.QualityMedium
	default:
		return model.QualityLow
	}
}

func computeEngagement(video model.Video) model.EngagementMetrics {
	views := float64(video.Statistics.Views)
	if views == 0 {
		return model.EngagementMetrics{}
	}
	likes := float64(video.Statistics.Likes)
	comments := float64(video.Statistics.Comments)

	return model.EngagementMetrics{
		EngagementRate: round4((likes + comments) / views),
		LikeRatio:      round4(likes / views),
		CommentRatio:   round4(comments / views),
	}
}

func round4(v float64) float64 {
	return float64(int(v*10000+0.5)) / 10000
}

func classifyEducationalValue(video model.Video, engagement model.EngagementMetrics) model.Quality {
	score := 0
	if video.CategoryID == "27" {
		score += 1
	}
	if hasChessTopic(video.TopicCategories) {
		score += 2
	}

	educationalTagHits := 0
	for _, tag := range video.Tags {
		lower := strings.ToLower(tag)
		if containsAny(lower, "opening", "tactics", "endgame", "strategy", "analysis", "theory") {
			educationalTagHits++
		}
	}
	if educationalTagHits > 3 {
		educationalTagHits = 3
	}
	score += educationalTagHits

	if video.ContentDetails.Caption {
		score += 1
	}
	if engagement.EngagementRate > 0.05 {
		score += 1
	}

	switch {
	case score >= 7:
		return model.QualityHigh
	case score >= 4:
		return model.QualityMedium
	default:
		return model.QualityLow
	}
}

func hasChessTopic(topics []string) bool {
	for _, t := range topics {
		lower := strings.ToLower(t)
		if strings.Contains(lower, "chess") || strings.Contains(lower, "game") || strings.Contains(lower, "strategy") {
			return true
		}
	}
	return false
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
