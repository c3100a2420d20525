// Package rss implements the RSS delta poller (spec §4.3, §6): lightweight,
// zero-quota incremental discovery of new uploads via each channel's Atom
// feed. Parsing follows the teacher's internal/parser/atom.go approach
// (encoding/xml against the YouTube namespace) generalized from a single
// pubsub notification entry to a full feed listing (spec §6: entries are
// extracted from <entry> with children yt:videoId, title, published, and
// author/name).
package rss

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chessopenings/video-indexer/internal/xerrors"
)

// Entry is one parsed <entry> from a channel's Atom feed.
type Entry struct {
	VideoID      string
	Title        string
	PublishedAt  time.Time
	ChannelTitle string
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	VideoID   string    `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	Title     string    `xml:"title"`
	Published time.Time `xml:"published"`
	Author    struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// Fetcher retrieves raw feed bytes for a URL. HTTPFetcher is the default
// implementation; tests substitute a fake.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher is the default Fetcher, a thin context-aware http.Get.
type HTTPFetcher struct {
	Client *http.Client
}

// Get performs a GET request and returns the response body.
func (f HTTPFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, xerrors.Upstream(resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// FeedURL derives the per-channel Atom feed URL (spec §6).
func FeedURL(channelID string) string {
	return "https://www.youtube.com/feeds/videos.xml?channel_id=" + channelID
}

// Parse decodes a channel's Atom feed body. Malformed XML is tolerated: it
// returns an empty entry list plus an error string (spec §4.1), never a
// hard failure that aborts the caller.
func Parse(body []byte) ([]Entry, error) {
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, xerrors.Parse("rss-feed", err)
	}

	entries := make([]Entry, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if e.VideoID == "" {
			continue
		}
		entries = append(entries, Entry{
			VideoID:      e.VideoID,
			Title:        e.Title,
			PublishedAt:  e.Published,
			ChannelTitle: e.Author.Name,
		})
	}
	return entries, nil
}

// Fetch retrieves and parses a channel's Atom feed. Zero quota cost
// (spec §4.1).
func Fetch(ctx context.Context, fetcher Fetcher, channelID string) ([]Entry, error) {
	body, err := fetcher.Get(ctx, FeedURL(channelID))
	if err != nil {
		return nil, fmt.Errorf("fetch rss for %s: %w", channelID, err)
	}
	return Parse(body)
}
