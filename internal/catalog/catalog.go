// Package catalog provides a minimal file-backed implementation of
// openings.Catalog (spec §6: "an iterable of openings ... produced by an
// external module"). The contract is external to the core pipeline; this is
// a reference loader so the CLI has a working default, not a canonical
// catalog format.
package catalog

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/chessopenings/video-indexer/internal/openings"
	"github.com/chessopenings/video-indexer/internal/store"
	"github.com/chessopenings/video-indexer/internal/xerrors"
)

// FileCatalog loads openings from a flat JSON array on disk and checks the
// videos directory for already-processed positions.
type FileCatalog struct {
	openings  []openings.Opening
	videosDir string
}

// Load reads the openings file (a JSON array of openings.Opening) and binds
// it to the videos directory used for the hasExistingVideos check.
func Load(path, videosDir string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.IO(path, err)
	}

	var entries []openings.Opening
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, xerrors.Parse("openings-catalog", err)
	}

	return &FileCatalog{openings: entries, videosDir: videosDir}, nil
}

// Openings implements openings.Catalog.
func (c *FileCatalog) Openings(ecoFilter string) ([]openings.Opening, error) {
	if ecoFilter == "" {
		return c.openings, nil
	}

	filter := strings.ToUpper(ecoFilter)
	var filtered []openings.Opening
	for _, o := range c.openings {
		if strings.HasPrefix(strings.ToUpper(o.ECO), filter) {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// HasExistingVideos implements openings.Catalog.
func (c *FileCatalog) HasExistingVideos(fen string) bool {
	return store.HasNonEmptyVideoFile(c.videosDir, fen)
}
