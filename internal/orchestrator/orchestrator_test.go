package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chessopenings/video-indexer/internal/indexer"
	"github.com/chessopenings/video-indexer/internal/metrics"
	"github.com/chessopenings/video-indexer/internal/model"
	"github.com/chessopenings/video-indexer/internal/openings"
	"github.com/chessopenings/video-indexer/internal/store"
)

type fakeCatalog struct {
	openings []openings.Opening
	done     map[string]bool
}

func (c *fakeCatalog) Openings(ecoFilter string) ([]openings.Opening, error) { return c.openings, nil }
func (c *fakeCatalog) HasExistingVideos(fen string) bool                     { return c.done[fen] }

type emptyFetcher struct{}

func (emptyFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	return []byte(`<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015"></feed>`), nil
}

func newTestPaths(t *testing.T) Paths {
	dir := t.TempDir()
	return Paths{
		ChannelConfig:     filepath.Join(dir, "channels.yaml"),
		IndexSnapshot:     filepath.Join(dir, "index.json"),
		Cache:             filepath.Join(dir, "cache.json"),
		VideosDir:         filepath.Join(dir, "videos"),
		Checkpoint:        filepath.Join(dir, "checkpoint.json"),
		Summary:           filepath.Join(dir, "summary.json"),
		ConsolidatedIndex: filepath.Join(dir, "consolidated.json"),
	}
}

func TestRun_UsesRecentSnapshotAndSkipsClientEntirely(t *testing.T) {
	paths := newTestPaths(t)

	video := model.Video{
		ID:              "v1",
		ChannelID:       "UC1",
		Title:           "Sicilian Defense full opening theory course",
		Statistics:      model.Statistics{Views: 100000, Likes: 8000, Comments: 2000},
		ContentDetails:  model.ContentDetails{Definition: "hd", Caption: true},
		CategoryID:      "27",
		TopicCategories: []string{"chess"},
		Language:        "en",
	}
	require.NoError(t, store.WriteIndexSnapshot(paths.IndexSnapshot, map[string][]model.Video{"UC1": {video}}, nil, time.Now()))

	cat := &fakeCatalog{openings: []openings.Opening{{FEN: "fen-sicilian", ECO: "B20", Name: "Sicilian Defense"}}}

	orch := &Orchestrator{
		Catalog: cat,
		Fetcher: emptyFetcher{},
		Paths:   paths,
	}

	channels := []openings.TrustedChannel{{ChannelID: "UC1", QualityTier: openings.TierPremium}}
	summary, err := orch.Run(context.Background(), Options{}, channels)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 1, summary.VideosAdded)

	file, exists, err := store.ReadVideoFile(paths.VideosDir, "fen-sicilian")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 1, file.VideoCount)
	require.Len(t, file.Videos, 1)
	assert.Greater(t, file.Videos[0].Analysis.RelevanceScore, 0, "relevance_score must carry the matcher's score, not be left at zero")
}

func TestRun_SkipsOpeningsTheCatalogReportsAsDone(t *testing.T) {
	paths := newTestPaths(t)
	require.NoError(t, store.WriteIndexSnapshot(paths.IndexSnapshot, map[string][]model.Video{}, nil, time.Now()))

	cat := &fakeCatalog{
		openings: []openings.Opening{{FEN: "fen-done", ECO: "B20", Name: "Sicilian Defense"}},
		done:     map[string]bool{"fen-done": true},
	}

	orch := &Orchestrator{Catalog: cat, Fetcher: emptyFetcher{}, Paths: paths}

	summary, err := orch.Run(context.Background(), Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
}

func TestFlattenIndex_CombinesAllChannels(t *testing.T) {
	idx := indexer.NewLocalIndex()
	idx.Set("UC1", []model.Video{{ID: "v1"}})
	idx.Set("UC2", []model.Video{{ID: "v2"}})
	assert.Len(t, flattenIndex(idx), 2)
}

func TestRun_ResumeReusesCheckpointMatchesWithoutRematching(t *testing.T) {
	paths := newTestPaths(t)
	require.NoError(t, store.WriteIndexSnapshot(paths.IndexSnapshot, map[string][]model.Video{}, nil, time.Now()))

	resumedMatch := model.Match{
		Video:      model.EnrichedVideo{Video: model.Video{ID: "resumed-video"}},
		OpeningFEN: "fen-resumed",
		Score:      77,
	}
	require.NoError(t, store.WriteCheckpoint(paths.Checkpoint, model.Checkpoint{
		Matches: map[string][]model.Match{"fen-resumed": {resumedMatch}},
	}))

	cat := &fakeCatalog{openings: []openings.Opening{{FEN: "fen-resumed", ECO: "B20", Name: "Sicilian Defense"}}}
	orch := &Orchestrator{Catalog: cat, Fetcher: emptyFetcher{}, Paths: paths}

	summary, err := orch.Run(context.Background(), Options{Resume: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)

	checkpoint, exists, err := store.LoadCheckpoint(paths.Checkpoint)
	require.NoError(t, err)
	require.True(t, exists)
	require.Len(t, checkpoint.Matches["fen-resumed"], 1)
	assert.Equal(t, 77, checkpoint.Matches["fen-resumed"][0].Score)
}

func TestResumeOrMatch_ReusesCheckpointedFENsAndMatchesRemaining(t *testing.T) {
	paths := newTestPaths(t)
	require.NoError(t, store.WriteCheckpoint(paths.Checkpoint, model.Checkpoint{
		Matches: map[string][]model.Match{"fen-a": {{OpeningFEN: "fen-a", Score: 99}}},
	}))

	orch := &Orchestrator{Paths: paths}
	pending := []openings.Opening{{FEN: "fen-a"}, {FEN: "fen-b"}}

	matchesByOpening, fenOrder := orch.resumeOrMatch(Options{Resume: true}, pending, nil, func(string) openings.QualityTier { return openings.TierStandard })

	assert.Equal(t, []string{"fen-a", "fen-b"}, fenOrder)
	require.Len(t, matchesByOpening["fen-a"], 1)
	assert.Equal(t, 99, matchesByOpening["fen-a"][0].Score)
	assert.Empty(t, matchesByOpening["fen-b"])
}

func TestRun_RecordsMatchAndEnrichmentMetrics(t *testing.T) {
	paths := newTestPaths(t)

	video := model.Video{
		ID:              "v1",
		ChannelID:       "UC1",
		Title:           "Sicilian Defense full opening theory course",
		Statistics:      model.Statistics{Views: 100000, Likes: 8000, Comments: 2000},
		ContentDetails:  model.ContentDetails{Definition: "hd", Caption: true},
		CategoryID:      "27",
		TopicCategories: []string{"chess"},
		Language:        "en",
	}
	require.NoError(t, store.WriteIndexSnapshot(paths.IndexSnapshot, map[string][]model.Video{"UC1": {video}}, nil, time.Now()))

	cat := &fakeCatalog{openings: []openings.Opening{{FEN: "fen-sicilian", ECO: "B20", Name: "Sicilian Defense"}}}
	reg := metrics.New()
	orch := &Orchestrator{Catalog: cat, Fetcher: emptyFetcher{}, Paths: paths, Metrics: reg}

	channels := []openings.TrustedChannel{{ChannelID: "UC1", QualityTier: openings.TierPremium}}
	_, err := orch.Run(context.Background(), Options{}, channels)
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(reg.VideosEnriched))
	assert.Equal(t, float64(1), testutil.ToFloat64(reg.CacheMisses))
	assert.Equal(t, float64(0), testutil.ToFloat64(reg.CacheHits))

	var histMetric dto.Metric
	require.NoError(t, reg.MatchesPerOpening.Write(&histMetric))
	assert.Equal(t, uint64(1), histMetric.GetHistogram().GetSampleCount())
}

func TestMatchWithProgress_PassesMaxResultsToMatcher(t *testing.T) {
	orch := &Orchestrator{}
	opening := openings.Opening{FEN: "fen-english", ECO: "A10", Name: "English Opening"}

	var candidates []model.Video
	for i := 0; i < 15; i++ {
		candidates = append(candidates, model.Video{
			ID:              fmt.Sprintf("v%02d", i),
			ChannelID:       "chan1",
			Title:           "English Opening full theory course",
			Statistics:      model.Statistics{Views: 100000, Likes: 8000, Comments: 2000},
			ContentDetails:  model.ContentDetails{Definition: "hd", Caption: true},
			CategoryID:      "27",
			TopicCategories: []string{"chess"},
			Language:        "en",
		})
	}

	matchesByOpening, _ := orch.matchWithProgress([]openings.Opening{opening}, candidates, func(string) openings.QualityTier { return openings.TierPremium }, 3)
	assert.Len(t, matchesByOpening[opening.FEN], 3)
}

func TestBuildCheckpoint_CountsMatchesAndInstances(t *testing.T) {
	matches := map[string][]model.Match{
		"fen-a": {{OpeningFEN: "fen-a"}, {OpeningFEN: "fen-a"}},
		"fen-b": {{OpeningFEN: "fen-b"}},
	}
	checkpoint := buildCheckpoint(matches, []string{"fen-a", "fen-b"})
	assert.Equal(t, 2, checkpoint.OpeningsCount)
	assert.Equal(t, 3, checkpoint.MatchesCount)
	assert.Equal(t, 3, checkpoint.TotalVideoInstances)
}
