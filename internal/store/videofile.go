package store

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/chessopenings/video-indexer/internal/model"
)

// SanitizeFEN derives a filesystem-safe file stem from a position
// fingerprint (spec §6, §8): "/" -> "_", whitespace -> "-", lower-cased.
// This is a stable wire contract; external readers compute it identically.
func SanitizeFEN(fen string) string {
	s := strings.ToLower(fen)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '-'
		}
		return r
	}, s)
	return s
}

// VideoFilePath builds the path for a position's video file
// (spec §6: <videos_dir>/<sanitize(fen)>.json).
func VideoFilePath(videosDir, fen string) string {
	return filepath.Join(videosDir, SanitizeFEN(fen)+".json")
}

// WriteVideoFile persists one opening's matched, enriched videos
// (spec §4.7).
func WriteVideoFile(videosDir string, file model.VideoFile) error {
	return WriteJSONAtomic(VideoFilePath(videosDir, file.FEN), file)
}

// ReadVideoFile loads a previously written per-opening video file.
func ReadVideoFile(videosDir, fen string) (model.VideoFile, bool, error) {
	var file model.VideoFile
	exists, err := ReadJSON(VideoFilePath(videosDir, fen), &file)
	return file, exists, err
}

// HasNonEmptyVideoFile reports whether a position already has a video file
// with at least one video, used by the orchestrator to skip already
// processed openings (spec §4.8).
func HasNonEmptyVideoFile(videosDir, fen string) bool {
	file, exists, err := ReadVideoFile(videosDir, fen)
	if err != nil || !exists {
		return false
	}
	return file.VideoCount > 0
}

// ConsolidatedIndex aggregates every position's video file into one
// document (SPEC_FULL.md open-question resolution): an optional,
// read-preferred fallback built from the same in-memory data at the end of
// a run, never an independent source of truth.
type ConsolidatedIndex struct {
	Positions map[string]model.VideoFile `json:"positions"`
}

// WriteConsolidatedIndex writes the optional consolidated index file.
func WriteConsolidatedIndex(path string, files map[string]model.VideoFile) error {
	return WriteJSONAtomic(path, ConsolidatedIndex{Positions: files})
}

// ReadConsolidatedIndex reads the consolidated index file, if present.
func ReadConsolidatedIndex(path string) (ConsolidatedIndex, bool, error) {
	var idx ConsolidatedIndex
	exists, err := ReadJSON(path, &idx)
	return idx, exists, err
}
