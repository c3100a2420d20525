package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chessopenings/video-indexer/internal/model"
)

func TestWriteLoadCheckpoint_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	checkpoint := model.Checkpoint{
		Phase:         "matching",
		OpeningsCount: 3,
		MatchesCount:  5,
	}
	require.NoError(t, WriteCheckpoint(path, checkpoint))

	got, exists, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 5, got.MatchesCount)
}

func TestLoadCheckpoint_MissingIsNotAnError(t *testing.T) {
	_, exists, err := LoadCheckpoint(filepath.Join(t.TempDir(), "absent.json"))
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestWriteSummary_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, WriteSummary(path, model.ResultsSummary{RunID: "run-1", Processed: 10}))

	var got model.ResultsSummary
	exists, err := ReadJSON(path, &got)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "run-1", got.RunID)
}

func TestIsIndexRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, IsIndexRecent(path, now), "missing snapshot is never recent")

	require.NoError(t, WriteIndexSnapshot(path, nil, nil, now))
	assert.True(t, IsIndexRecent(path, now.Add(24*time.Hour)))
	assert.False(t, IsIndexRecent(path, now.Add(8*24*time.Hour)))
}
