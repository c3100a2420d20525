package enrich

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chessopenings/video-indexer/internal/model"
	"github.com/chessopenings/video-indexer/internal/openings"
	"github.com/chessopenings/video-indexer/internal/store"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func tierOf(string) openings.QualityTier { return openings.TierStandard }

func TestEnrich_NoCacheYieldsAllNewlyEnriched(t *testing.T) {
	dir := t.TempDir()
	cache, err := store.LoadCache(filepath.Join(dir, "cache.json"))
	require.NoError(t, err)

	videos := []model.Video{
		{ID: "v1", Title: "Opening theory basics", Statistics: model.Statistics{Views: 1000, Likes: 50}},
		{ID: "v2", Title: "Advanced endgame analysis", Statistics: model.Statistics{Views: 2000, Likes: 300}},
	}

	result := Enrich(context.Background(), videos, cache, tierOf, 50, fixedClock(time.Now()), nil)
	assert.Equal(t, 0, result.Cached)
	assert.Equal(t, 2, result.NewlyEnriched)
	assert.Len(t, result.Enriched, 2)
}

func TestEnrich_WarmCacheReportsAllCachedAndSkipsDerivation(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.json")
	now := time.Now()

	cache, err := store.LoadCache(cachePath)
	require.NoError(t, err)

	videos := make([]model.Video, 0, 50)
	for i := 0; i < 50; i++ {
		videos = append(videos, model.Video{ID: fmt.Sprintf("v%02d", i), Title: "Opening theory"})
	}
	first := Enrich(context.Background(), videos, cache, tierOf, 50, fixedClock(now), nil)
	require.Equal(t, 50, first.NewlyEnriched)

	warmCache, err := store.LoadCache(cachePath)
	require.NoError(t, err)

	second := Enrich(context.Background(), videos, warmCache, tierOf, 50, fixedClock(now.Add(time.Hour)), nil)
	assert.Equal(t, 50, second.Cached)
	assert.Equal(t, 0, second.NewlyEnriched)
}

func TestEnrich_FlushesCacheAfterEachBatch(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.json")
	cache, err := store.LoadCache(cachePath)
	require.NoError(t, err)

	videos := []model.Video{{ID: "v1", Title: "Opening theory"}}
	Enrich(context.Background(), videos, cache, tierOf, 50, fixedClock(time.Now()), nil)

	_, statErr := os.Stat(cachePath)
	assert.NoError(t, statErr)
}

func TestComputeEngagement_RoundsToFourDecimals(t *testing.T) {
	v := model.Video{Statistics: model.Statistics{Views: 3, Likes: 1, Comments: 1}}
	got := computeEngagement(v)
	assert.Equal(t, 0.6667, got.EngagementRate)
}
