// Package store implements the content-addressed persistence layer
// (spec §4.7): the enrichment cache file, per-opening video files, the
// index snapshot, and the matches checkpoint. All writes are atomic
// (write to a sibling temp file, then rename) and ensure their parent
// directory exists first.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/chessopenings/video-indexer/internal/xerrors"
)

// WriteJSONAtomic marshals v as indented JSON and writes it to path via a
// sibling temp file + rename, so concurrent readers never observe a
// partial file (spec §4.7, §5).
func WriteJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return xerrors.IO(path, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return xerrors.IO(path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return xerrors.IO(path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return xerrors.IO(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return xerrors.IO(path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return xerrors.IO(path, err)
	}
	return nil
}

// ReadJSON reads and decodes a JSON file. A missing file is reported via
// the returned bool (exists=false) rather than an error, so callers can
// start empty without treating "not yet written" as a failure
// (spec §4.7: "a missing or unreadable cache starts empty without error").
func ReadJSON(path string, v any) (exists bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, xerrors.IO(path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return true, xerrors.Parse("json-file:"+path, err)
	}
	return true, nil
}
