package matcher

import (
	"sort"
	"strings"

	"github.com/chessopenings/video-indexer/internal/openings"
)

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true,
	"defense": true, "defence": true, "attack": true, "gambit": true, "opening": true,
}

var chessKeywords = []string{
	"opening", "theory", "repertoire", "preparation", "guide", "lesson",
	"tutorial", "masterclass", "explained", "basics", "advanced", "complete", "course",
}

// GeneratePatterns produces the deduplicated, length-descending-ordered
// lower-cased search patterns for an opening (spec §4.5).
func GeneratePatterns(opening openings.Opening) []string {
	seen := make(map[string]bool)
	var patterns []string

	add := func(p string) {
		p = strings.ToLower(strings.TrimSpace(p))
		if len(p) < 3 || seen[p] {
			return
		}
		seen[p] = true
		patterns = append(patterns, p)
	}

	add(opening.Name)
	add(opening.ECO)
	for _, alias := range opening.Aliases {
		add(alias)
	}

	words := significantWords(opening.Name)
	for _, w := range words {
		add(w)
	}

	for _, w := range words {
		for _, kw := range chessKeywords {
			add(w + " " + kw)
			add(kw + " " + w)
		}
	}

	if opening.ECO != "" {
		ecoLower := strings.ToLower(opening.ECO)
		add(ecoLower + " opening")
		add(ecoLower + " chess")
		add(ecoLower + " theory")
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return len(patterns[i]) > len(patterns[j])
	})
	return patterns
}

func significantWords(name string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(name)) {
		w = strings.Trim(w, ".,'\"()")
		if len(w) > 3 && !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// HitCounts holds per-field pattern hit counts (spec §4.5).
type HitCounts struct {
	TitleHits       int
	DescriptionHits int
	TagHits         int
}

// MatchesAnyPattern searches the lower-cased title, description, and joined
// tags for each pattern, returning per-field hit counts. Each field is
// searched on its own, so a pattern spanning two fields is not found.

func MatchesAnyPattern(lowerTitle, lowerDescription, lowerTags string, patterns []string) HitCounts {
	var hits HitCounts
	for _, p := range patterns {
		if strings.Contains(lowerTitle, p) {
			hits.TitleHits++
		}
		if strings.Contains(lowerDescription, p) {
			hits.DescriptionHits++
		}
		if strings.Contains(lowerTags, p) {
			hits.TagHits++
		}
	}
	return hits
}

func (h HitCounts) Any() bool {
	return h.TitleHits > 0 || h.DescriptionHits > 0 || h.TagHits > 0
}
