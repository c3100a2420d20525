// Package model holds the Video, EnrichedVideo, and Match types that flow
// through every phase of the pipeline (spec §3).
package model

import "time"

// Statistics mirrors the upstream "statistics" part (spec §3).
type Statistics struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// ContentDetails mirrors the upstream "contentDetails" part, trimmed to the
// fields the pre-filter and matcher consume.
type ContentDetails struct {
	Definition string `json:"definition"` // "hd" or "sd"
	Caption    bool   `json:"caption"`
}

// Video is the raw record produced by the channel indexer (spec §3).
type Video struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	PublishedAt time.Time         `json:"published_at"`
	ChannelID   string            `json:"channel_id"`
	ChannelTitle string           `json:"channel_title"`
	Thumbnails  map[string]string `json:"thumbnails,omitempty"`
	Duration    string            `json:"duration"` // ISO-8601 period, e.g. "PT4M13S"
	Tags        []string          `json:"tags,omitempty"`
	CategoryID  string            `json:"category_id,omitempty"`
	Language    string            `json:"language,omitempty"`

	Statistics      Statistics      `json:"statistics"`
	ContentDetails  ContentDetails  `json:"content_details"`
	Status          string          `json:"status,omitempty"`
	TopicCategories []string        `json:"topic_categories,omitempty"`

	// HasEnhancedMetadata records whether the detail fetch for this video
	// succeeded (spec §4.2 step 3). false means only partial (listing-only)
	// fields are populated.
	HasEnhancedMetadata bool `json:"has_enhanced_metadata"`
}

// DifficultyLevel classifies the apparent skill level targeted by a video.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// ContentType classifies the kind of instructional content.
type ContentType string

const (
	ContentGameAnalysis  ContentType = "game-analysis"
	ContentTutorial      ContentType = "tutorial"
	ContentOpeningTheory ContentType = "opening-theory"
	ContentLive          ContentType = "live-content"
	ContentGeneral       ContentType = "general"
)

// Quality is a coarse low/medium/high rating.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// EngagementMetrics holds engagement ratios rounded to 4 decimal places
// (spec §4.6).
type EngagementMetrics struct {
	EngagementRate float64 `json:"engagement_rate"`
	LikeRatio      float64 `json:"like_ratio"`
	CommentRatio   float64 `json:"comment_ratio"`
}

// Analysis holds the fields derived purely from already-fetched metadata
// (spec §3, §4.6) — no additional upstream call is made to produce it.
type Analysis struct {
	RelevanceScore      int               `json:"relevance_score"`
	DifficultyLevel     DifficultyLevel   `json:"difficulty_level"`
	ContentType         ContentType       `json:"content_type"`
	InstructorQuality   Quality           `json:"instructor_quality"`
	VideoQuality        Quality           `json:"video_quality"`
	EngagementMetrics   EngagementMetrics `json:"engagement_metrics"`
	EducationalValue    Quality           `json:"educational_value"`
}

// EnrichmentMeta records provenance and cache status for an EnrichedVideo.
type EnrichmentMeta struct {
	IndexedAt time.Time `json:"indexed_at"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Cached    bool      `json:"cached"`
}

// EnrichedVideo is a Video plus derived per-opening-independent analysis
// (spec §3). It is the unit stored in the EnrichmentCache and in per-opening
// video files.
type EnrichedVideo struct {
	Video
	WatchURL string         `json:"watch_url"`
	Analysis Analysis       `json:"analysis"`
	Metadata EnrichmentMeta `json:"metadata"`
}

// WatchURLFor builds the canonical watch URL for a video ID.
func WatchURLFor(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// MatchType records which scoring contribution produced a match's top
// score, for auditing (spec §4.5).
type MatchType string

const (
	MatchTitleExact    MatchType = "title_exact"
	MatchExact         MatchType = "exact"
	MatchFamily        MatchType = "family"
	MatchPartialTitle  MatchType = "partial_title"
	MatchAbbreviation  MatchType = "abbreviation"
	MatchECO           MatchType = "eco"
)

// Match is a scored (video, opening) pair, scoped to a single pipeline run
// (spec §3).
type Match struct {
	Video     EnrichedVideo `json:"video"`
	OpeningFEN string       `json:"opening_fen"`
	Score     int           `json:"score"`
	MatchType MatchType     `json:"match_type"`
}
