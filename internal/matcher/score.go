package matcher

import (
	"math"
	"strings"

	"github.com/chessopenings/video-indexer/internal/model"
	"github.com/chessopenings/video-indexer/internal/openings"
)

// educationCategoryID is the upstream video category id for "Education".
const educationCategoryID = "27"

const (
	titleHitPoints       = 15
	tagHitPoints         = 12
	descriptionHitPoints = 5

	severeIncompatibilityScore = 0
	moderateMismatchPenalty    = 30

	// AcceptanceThreshold is the minimum score a Match must clear to be kept
	// (spec §4.5: "a minimum acceptance threshold (≈60)").
	AcceptanceThreshold = 60

	// TopN is the canonical per-opening result cap (SPEC_FULL.md open
	// question resolution: maxResults default 10, overridable via config).
	TopN = 10
)

// ScoreResult is the outcome of scoring one (opening, video) pair.
type ScoreResult struct {
	Score     int
	MatchType model.MatchType
}

// ScoreVideo computes the full score for a video against an opening's
// patterns, applying the base text score, quality/engagement bonuses, the
// trusted-channel boost, and the family safeguard (spec §4.5).
func ScoreVideo(opening openings.Opening, video model.Video, patterns []string, tier openings.QualityTier) ScoreResult {
	lowerTitle := strings.ToLower(video.Title)
	lowerDescription := strings.ToLower(video.Description)
	lowerTags := strings.ToLower(strings.Join(video.Tags, " "))

	hits := MatchesAnyPattern(lowerTitle, lowerDescription, lowerTags, patterns)
	if !hits.Any() {
		return ScoreResult{Score: 0}
	}

	base := hits.TitleHits*titleHitPoints + hits.TagHits*tagHitPoints + hits.DescriptionHits*descriptionHitPoints
	score := float64(base)

	if video.Statistics.Views > 0 {
		score += 2 * math.Log10(float64(video.Statistics.Views))

		engagementRate := float64(video.Statistics.Likes+video.Statistics.Comments) / float64(video.Statistics.Views)
		score += math.Min(10, 1000*engagementRate)
	}

	if strings.EqualFold(video.ContentDetails.Definition, "hd") {
		score += 3
	}
	if video.ContentDetails.Caption {
		score += 2
	}
	if video.CategoryID == educationCategoryID {
		score += 5
	}
	if hasChessTopicCue(video.TopicCategories) {
		score += 8
	}
	if isEnglish(video.Language) {
		score += 2
	}

	switch tier {
	case openings.TierPremium:
		score *= 1.3
	case openings.TierStandard:
		score *= 1.1
	}

	openingFamily := ECOFamily(opening.ECO)
	videoFamilies := VideoFamiliesFromTitle(lowerTitle)
	mismatch := false
	for _, videoFamily := range videoFamilies {
		if IsSevereIncompatibility(openingFamily, videoFamily) {
			return ScoreResult{Score: severeIncompatibilityScore, MatchType: classifyMatchType(opening, video, hits)}
		}
		if openingFamily != "" && videoFamily != openingFamily {
			mismatch = true
		}
	}
	if mismatch {
		score -= moderateMismatchPenalty
	}

	return ScoreResult{Score: int(score), MatchType: classifyMatchType(opening, video, hits)}
}

func hasChessTopicCue(topics []string) bool {
	for _, t := range topics {
		lower := strings.ToLower(t)
		if strings.Contains(lower, "chess") || strings.Contains(lower, "game") || strings.Contains(lower, "strategy") {
			return true
		}
	}
	return false
}

func isEnglish(language string) bool {
	lower := strings.ToLower(language)
	return lower == "" || lower == "en" || strings.HasPrefix(lower, "en-")
}

// classifyMatchType records which contribution produced the match, for
// auditing (spec §4.5).
func classifyMatchType(opening openings.Opening, video model.Video, hits HitCounts) model.MatchType {
	lowerTitle := strings.ToLower(video.Title)
	lowerName := strings.ToLower(opening.Name)

	switch {
	case strings.Contains(lowerTitle, lowerName) && hits.TitleHits > 0:
		return model.MatchTitleExact
	case opening.ECO != "" && strings.Contains(lowerTitle, strings.ToLower(opening.ECO)):
		return model.MatchECO
	case aliasExactHit(opening, lowerTitle):
		return model.MatchExact
	case hits.TitleHits > 0:
		return model.MatchPartialTitle
	case hits.TagHits > 0:
		return model.MatchFamily
	default:
		return model.MatchAbbreviation
	}
}

func aliasExactHit(opening openings.Opening, lowerTitle string) bool {
	for _, alias := range opening.Aliases {
		if strings.Contains(lowerTitle, strings.ToLower(alias)) {
			return true
		}
	}
	return false
}
