package rss

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <yt:videoId>abc123</yt:videoId>
    <title>Sicilian Defense Deep Dive</title>
    <published>2026-01-05T12:00:00+00:00</published>
    <author><name>Chess Channel</name></author>
  </entry>
  <entry>
    <yt:videoId>def456</yt:videoId>
    <title>French Defense Basics</title>
    <published>2026-01-06T12:00:00+00:00</published>
    <author><name>Chess Channel</name></author>
  </entry>
</feed>`

func TestParse_ExtractsEntries(t *testing.T) {
	entries, err := Parse([]byte(sampleFeed))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "abc123", entries[0].VideoID)
	assert.Equal(t, "Sicilian Defense Deep Dive", entries[0].Title)
	assert.Equal(t, "Chess Channel", entries[0].ChannelTitle)
}

func TestParse_SkipsEntriesWithoutVideoID(t *testing.T) {
	feed := `<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015"><entry><title>No ID</title></entry></feed>`
	entries, err := Parse([]byte(feed))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParse_MalformedXMLReturnsParseError(t *testing.T) {
	_, err := Parse([]byte("<not-xml"))
	assert.Error(t, err)
}

func TestFeedURL_IncludesChannelID(t *testing.T) {
	url := FeedURL("UC12345")
	assert.Contains(t, url, "channel_id=UC12345")
}

type fakeFetcher struct {
	body []byte
	err  error
}

func (f fakeFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	return f.body, f.err
}

func TestFetch_ParsesFetchedBody(t *testing.T) {
	entries, err := Fetch(context.Background(), fakeFetcher{body: []byte(sampleFeed)}, "UC1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
