// Package indexer maintains an incremental semantic index of a project:
// it scans the tree, hashes and chunks changed files, uploads the new
// blobs to the ACE batch-upload endpoint and persists a manifest so
// unchanged files are skipped on the next run. The manifest is only
// replaced when the whole upload succeeds.
package indexer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/Dianel555/DSkills/pkg/ace"
	"github.com/Dianel555/DSkills/pkg/logger"
)

// Sizing limits of the batch-upload API.
const (
	MaxBlobSize     = 128 * 1024
	MaxBatchBytes   = 1024 * 1024
	MaxLinesPerBlob = 800
	BatchBlobCount  = 30
)

// Blob is a pending upload: a file (or chunk of one) with its content.
type Blob struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	BlobName string `json:"blob_name"`
}

// Indexer scans and uploads one project tree.
type Indexer struct {
	root         string
	manifestPath string
	uploader     *Uploader
	ignoreGlobs  []string
}

// New creates an Indexer for the project rooted at projectRoot. The
// uploader may be nil, in which case changed blobs are recorded in the
// manifest without being uploaded (offline mode).
func New(projectRoot string, uploader *Uploader) (*Indexer, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, errors.Wrap(err, "invalid project root")
	}

	idx := &Indexer{
		root:         root,
		manifestPath: filepath.Join(root, IndexDir, IndexFile),
		uploader:     uploader,
	}
	idx.loadIgnoreGlobs()
	return idx, nil
}

// Result summarizes one indexing run.
type Result struct {
	BlobNames []string `json:"blob_names"`
	Uploaded  int      `json:"uploaded"`
	Skipped   int      `json:"skipped"`
	Total     int      `json:"total"`
}

// Run scans the project, uploads pending blobs and persists the
// manifest. A failed upload leaves the previous manifest authoritative,
// so the next run retries the same blobs.
func (idx *Indexer) Run(ctx context.Context) (Result, error) {
	manifest := loadManifest(idx.manifestPath)
	newEntries, pending, skipped, err := idx.scan(ctx, manifest)
	if err != nil {
		return Result{}, err
	}

	changed := len(pending) > 0 || !sameKeys(newEntries, manifest.Entries)
	if changed {
		logger.G(ctx).WithField("pending", len(pending)).WithField("skipped", skipped).
			Debug("index changed")
		if idx.uploader != nil {
			if err := idx.uploader.Upload(ctx, pending); err != nil {
				return Result{}, errors.Wrap(err, "upload failed, keeping previous index")
			}
		}
		manifest.Entries = newEntries
		if err := saveManifest(idx.manifestPath, manifest); err != nil {
			return Result{}, err
		}
	}

	names := make([]string, 0, len(manifest.Entries))
	for name := range manifest.Entries {
		names = append(names, name)
	}
	return Result{
		BlobNames: names,
		Uploaded:  len(pending),
		Skipped:   skipped,
		Total:     len(manifest.Entries),
	}, nil
}

func sameKeys(a, b map[string]BlobEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// scan walks the tree and produces the next manifest entries plus the
// blobs that need uploading. Files whose mtime and size match the
// previous manifest keep their cached blob entries untouched.
func (idx *Indexer) scan(ctx context.Context, previous Manifest) (map[string]BlobEntry, []Blob, int, error) {
	// Group previous entries by source path so chunked files hit the
	// cache as one unit.
	oldByPath := map[string][]BlobEntry{}
	for _, entry := range previous.Entries {
		base, _, _ := strings.Cut(entry.Path, "#chunk")
		oldByPath[base] = append(oldByPath[base], entry)
	}

	newEntries := map[string]BlobEntry{}
	var pending []Blob
	skipped := 0

	err := filepath.WalkDir(idx.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != idx.root && (ace.ExcludeDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if ace.BinaryExtensions[ext] || !ace.TextExtensions[ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > MaxBlobSize {
			return nil
		}

		rel, err := filepath.Rel(idx.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if idx.isIgnored(rel) {
			return nil
		}

		mtime := info.ModTime().UnixNano()
		if cached := oldByPath[rel]; len(cached) > 0 && cached[0].Mtime == mtime && cached[0].Size == info.Size() {
			for _, entry := range cached {
				newEntries[entry.BlobName] = entry
			}
			skipped++
			return nil
		}

		blobs := processFile(path, rel)
		for _, blob := range blobs {
			newEntries[blob.BlobName] = BlobEntry{
				Path:     blob.Path,
				BlobName: blob.BlobName,
				Mtime:    mtime,
				Size:     info.Size(),
			}
			if _, uploaded := previous.Entries[blob.BlobName]; !uploaded {
				pending = append(pending, blob)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, 0, errors.Wrap(err, "scan failed")
	}
	return newEntries, pending, skipped, nil
}

// loadIgnoreGlobs reads .gitignore patterns; malformed lines are kept
// as plain prefixes since doublestar tolerates most git syntax.
func (idx *Indexer) loadIgnoreGlobs() {
	data, err := os.ReadFile(filepath.Join(idx.root, ".gitignore"))
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx.ignoreGlobs = append(idx.ignoreGlobs, line)
	}
}

func (idx *Indexer) isIgnored(rel string) bool {
	base := rel[strings.LastIndex(rel, "/")+1:]
	for _, pattern := range idx.ignoreGlobs {
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		clean := strings.TrimSuffix(pattern, "/")
		if clean == "" {
			continue
		}
		for _, part := range strings.Split(rel, "/") {
			if part == clean {
				return true
			}
		}
		if strings.HasPrefix(rel, clean+"/") {
			return true
		}
	}
	return false
}

// processFile reads, sanitizes, chunks and hashes one file. Binary
// content (NUL bytes up front) and empty files yield no blobs.
func processFile(path, rel string) []Blob {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	probe := raw
	if len(probe) > 8192 {
		probe = probe[:8192]
	}
	if bytes.IndexByte(probe, 0) >= 0 {
		return nil
	}

	content := sanitizeContent(string(raw))
	if strings.TrimSpace(content) == "" {
		return nil
	}

	return ChunkContent(rel, content)
}

// ChunkContent splits content over the per-blob line limit into chunks
// labeled path#chunkNofM and names each blob by its content hash.
func ChunkContent(rel, content string) []Blob {
	lines := strings.Split(content, "\n")
	if len(lines) <= MaxLinesPerBlob {
		return []Blob{{Path: rel, Content: content, BlobName: HashBlob(rel, content)}}
	}

	total := (len(lines) + MaxLinesPerBlob - 1) / MaxLinesPerBlob
	blobs := make([]Blob, 0, total)
	for i := 0; i < total; i++ {
		start := i * MaxLinesPerBlob
		end := start + MaxLinesPerBlob
		if end > len(lines) {
			end = len(lines)
		}
		chunk := strings.Join(lines[start:end], "\n")
		label := fmt.Sprintf("%s#chunk%dof%d", rel, i+1, total)
		blobs = append(blobs, Blob{Path: label, Content: chunk, BlobName: HashBlob(label, chunk)})
	}
	return blobs
}

// HashBlob names a blob by SHA-256 over its path label and content, so
// identical content at different paths gets distinct names.
func HashBlob(path, content string) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

func sanitizeContent(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.ReplaceAll(content, "\x00", "")
}
