package indexer

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Index directory layout under the project root.
const (
	IndexDir  = ".ace-tool"
	IndexFile = "index.json.gz"
)

// BlobEntry records one uploaded blob. Path carries the chunk label for
// chunked files; Mtime and Size describe the source file at index time
// and drive the unchanged-file fast path.
type BlobEntry struct {
	Path     string `json:"path"`
	BlobName string `json:"blob_name"`
	Mtime    int64  `json:"mtime"`
	Size     int64  `json:"size"`
}

// Manifest is the persisted index state, keyed by blob name.
type Manifest struct {
	Entries     map[string]BlobEntry `json:"entries"`
	LastIndexed int64                `json:"last_indexed"`
}

// loadManifest reads the gzip-compressed manifest. A missing or corrupt
// file yields an empty manifest so indexing starts fresh.
func loadManifest(path string) Manifest {
	empty := Manifest{Entries: map[string]BlobEntry{}}

	f, err := os.Open(path)
	if err != nil {
		return empty
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return empty
	}
	defer gz.Close()

	var m Manifest
	if err := json.NewDecoder(gz).Decode(&m); err != nil {
		return empty
	}
	if m.Entries == nil {
		m.Entries = map[string]BlobEntry{}
	}
	return m
}

// saveManifest writes the manifest atomically: gzip to a temp file,
// then rename over the previous manifest.
func saveManifest(path string, m Manifest) error {
	m.LastIndexed = time.Now().Unix()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create index directory")
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "failed to create manifest file")
	}

	gz := gzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(m); err != nil {
		gz.Close()
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "failed to encode manifest")
	}
	if err := gz.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "failed to flush manifest")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "failed to close manifest file")
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "failed to replace manifest")
	}
	return nil
}
