// Package prefilter implements the title/duration/channel-tier gates that
// eliminate non-educational candidates before any expensive matching call
// (spec §4.4). preFilterVideo is a pure predicate: calling it twice on the
// same video yields the same result.
package prefilter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/chessopenings/video-indexer/internal/model"
	"github.com/chessopenings/video-indexer/internal/openings"
)

const (
	premiumMinDurationSeconds  = 240
	standardMinDurationSeconds = 480
)

var exclusionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(tournament|live stream|livestream|round \d+)\b`),
	regexp.MustCompile(`(?i)\b(football|basketball|soccer|baseball|tennis|cricket)\b`),
	regexp.MustCompile(`(?i)\b(blitz|bullet|rapid|casual (play|game))\b`),
	regexp.MustCompile(`(?i)\b(reaction|commentary)\b`),
	regexp.MustCompile(`(?i)\b(podcast|interview)\b`),
	regexp.MustCompile(`(?i)\b(vlog|cooking|travel|music video)\b`),
}

var casualLanguagePattern = regexp.MustCompile(`(?i)\b(blitz|bullet|speedrun|chaos|insane|crazy)\b`)

var educationalFamilyPattern = regexp.MustCompile(`(?i)\b(opening|tactics|endgame|analysis|strategy)\b`)

var durationPattern = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseDuration parses an ISO-8601-style period string ("PT4M13S") into
// seconds. It returns ok=false on malformed input, in which case callers
// must skip the duration check (spec §4.4, §8).
func ParseDuration(period string) (seconds int, ok bool) {
	if period == "" {
		return 0, false
	}
	m := durationPattern.FindStringSubmatch(period)
	if m == nil {
		return 0, false
	}
	// Reject a bare "P" with no components at all.
	if period == "P" {
		return 0, false
	}

	days := atoiOr(m[3], 0)
	hours := atoiOr(m[4], 0)
	minutes := atoiOr(m[5], 0)
	secs := atoiOr(m[6], 0)

	total := days*86400 + hours*3600 + minutes*60 + secs
	return total, true
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Result is the batch-level pre-filter outcome (spec §4.4).
type Result struct {
	Candidates        []model.Video
	TotalInput        int
	RejectedCount     int
	ReductionPercentage float64
}

// PreFilterVideo is the pure per-video predicate (spec §4.4).
func PreFilterVideo(video model.Video, tier openings.QualityTier) bool {
	haystack := strings.ToLower(video.Title)

	for _, pattern := range exclusionPatterns {
		if pattern.MatchString(haystack) {
			return false
		}
	}

	if seconds, ok := ParseDuration(video.Duration); ok {
		threshold := premiumMinDurationSeconds
		if tier == openings.TierStandard {
			threshold = standardMinDurationSeconds
		}
		if seconds < threshold {
			return false
		}
	}

	if tier == openings.TierStandard && casualLanguagePattern.MatchString(haystack) {
		return false
	}

	return educationalFamilyPattern.MatchString(haystack)
}

// FilterBatch applies PreFilterVideo across a batch and reports the
// batch-level statistics (spec §4.4).
func FilterBatch(videos []model.Video, tierOf func(channelID string) openings.QualityTier) Result {
	result := Result{TotalInput: len(videos)}

	for _, v := range videos {
		if PreFilterVideo(v, tierOf(v.ChannelID)) {
			result.Candidates = append(result.Candidates, v)
		}
	}

	result.RejectedCount = result.TotalInput - len(result.Candidates)
	if result.TotalInput > 0 {
		result.ReductionPercentage = float64(result.RejectedCount) / float64(result.TotalInput) * 100
	}
	return result
}
