package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chessopenings/video-indexer/internal/model"
	"github.com/chessopenings/video-indexer/internal/xerrors"
	"github.com/chessopenings/video-indexer/internal/youtube"
)

type fakeUploader struct {
	uploadsByChannel map[string][]model.Video
	uploadsErr       map[string]error
	details          map[string]model.Video
	detailsErr       error
}

func (f fakeUploader) ListChannelUploads(ctx context.Context, channelID string, opts youtube.ListOptions) ([]model.Video, error) {
	if err, ok := f.uploadsErr[channelID]; ok {
		return nil, err
	}
	return f.uploadsByChannel[channelID], nil
}

func (f fakeUploader) BatchFetchVideoDetails(ctx context.Context, videoIDs []string) ([]model.Video, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	out := make([]model.Video, 0, len(videoIDs))
	for _, id := range videoIDs {
		if d, ok := f.details[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func TestBuildLocalIndex_MergesListingAndDetails(t *testing.T) {
	client := fakeUploader{
		uploadsByChannel: map[string][]model.Video{
			"UC1": {{ID: "v1", Title: "partial title"}},
		},
		details: map[string]model.Video{
			"v1": {ID: "v1", Title: "", Description: "full description", HasEnhancedMetadata: true},
		},
	}

	idx, result, err := BuildLocalIndex(context.Background(), client, []string{"UC1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChannelsCovered)
	assert.Equal(t, 1, result.TotalVideos)

	videos := idx.Videos("UC1")
	require.Len(t, videos, 1)
	assert.Equal(t, "partial title", videos[0].Title, "left join falls back to the partial title when details omit it")
	assert.Equal(t, "full description", videos[0].Description)
	assert.True(t, videos[0].HasEnhancedMetadata)
}

func TestBuildLocalIndex_DetailFetchFailureFallsBackToPartials(t *testing.T) {
	client := fakeUploader{
		uploadsByChannel: map[string][]model.Video{
			"UC1": {{ID: "v1", Title: "partial only"}},
		},
		detailsErr: errors.New("upstream 500"),
	}

	idx, result, err := BuildLocalIndex(context.Background(), client, []string{"UC1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChannelsCovered)
	videos := idx.Videos("UC1")
	require.Len(t, videos, 1)
	assert.False(t, videos[0].HasEnhancedMetadata)
}

func TestBuildLocalIndex_PerChannelErrorsDoNotAbortTheBuild(t *testing.T) {
	client := fakeUploader{
		uploadsByChannel: map[string][]model.Video{
			"UC1": {{ID: "v1"}},
		},
		uploadsErr: map[string]error{
			"UC2": errors.New("channel not found"),
		},
	}

	idx, result, err := BuildLocalIndex(context.Background(), client, []string{"UC1", "UC2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChannelsCovered)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, "UC2", result.Errors[0].Scope)
	assert.Len(t, idx.Videos("UC1"), 1)
}

func TestBuildLocalIndex_AllChannelsFailingWithRateLimitSignalEscalatesToQuotaExceeded(t *testing.T) {
	client := fakeUploader{
		uploadsErr: map[string]error{
			"UC1": errors.New("quota exceeded for today"),
		},
	}

	_, _, err := BuildLocalIndex(context.Background(), client, []string{"UC1"}, nil)
	assert.ErrorIs(t, err, xerrors.ErrQuotaExceeded)
}

func TestBuildLocalIndex_AllChannelsFailingWithoutRateLimitSignalDoesNotEscalate(t *testing.T) {
	client := fakeUploader{
		uploadsErr: map[string]error{
			"UC1": errors.New("channel deleted"),
		},
	}

	_, result, err := BuildLocalIndex(context.Background(), client, []string{"UC1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ChannelsCovered)
}

func TestBuildLocalIndex_EmptyUploadsListYieldsNoVideosNoError(t *testing.T) {
	client := fakeUploader{uploadsByChannel: map[string][]model.Video{"UC1": {}}}
	idx, result, err := BuildLocalIndex(context.Background(), client, []string{"UC1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChannelsCovered)
	assert.Empty(t, idx.Videos("UC1"))
}
