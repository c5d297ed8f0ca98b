package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestHashBlobIsPathSensitive(t *testing.T) {
	a := HashBlob("a.go", "content")
	b := HashBlob("b.go", "content")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, HashBlob("a.go", "content"))
	assert.Len(t, a, 64)
}

func TestChunkContent(t *testing.T) {
	t.Run("small file is one blob", func(t *testing.T) {
		blobs := ChunkContent("main.go", "package main\n")
		require.Len(t, blobs, 1)
		assert.Equal(t, "main.go", blobs[0].Path)
	})

	t.Run("exactly the limit is one blob", func(t *testing.T) {
		content := strings.TrimSuffix(strings.Repeat("x\n", MaxLinesPerBlob), "\n")
		blobs := ChunkContent("big.go", content)
		assert.Len(t, blobs, 1)
	})

	t.Run("large file is labeled chunks", func(t *testing.T) {
		lines := make([]string, 2000)
		for i := range lines {
			lines[i] = fmt.Sprintf("line %d", i)
		}
		blobs := ChunkContent("big.go", strings.Join(lines, "\n"))
		require.Len(t, blobs, 3)
		assert.Equal(t, "big.go#chunk1of3", blobs[0].Path)
		assert.Equal(t, "big.go#chunk2of3", blobs[1].Path)
		assert.Equal(t, "big.go#chunk3of3", blobs[2].Path)

		var total int
		for _, blob := range blobs {
			total += len(strings.Split(blob.Content, "\n"))
		}
		assert.Equal(t, 2000, total)
	})
}

func TestMakeBatches(t *testing.T) {
	t.Run("count limit", func(t *testing.T) {
		blobs := make([]Blob, 65)
		for i := range blobs {
			blobs[i] = Blob{Path: fmt.Sprintf("f%d", i), Content: "x"}
		}
		batches := MakeBatches(blobs)
		require.Len(t, batches, 3)
		assert.Len(t, batches[0], BatchBlobCount)
		assert.Len(t, batches[1], BatchBlobCount)
		assert.Len(t, batches[2], 5)
	})

	t.Run("byte limit", func(t *testing.T) {
		big := strings.Repeat("a", 600*1024)
		batches := MakeBatches([]Blob{
			{Path: "a", Content: big},
			{Path: "b", Content: big},
		})
		require.Len(t, batches, 2)
	})

	t.Run("oversized blob ships alone", func(t *testing.T) {
		batches := MakeBatches([]Blob{{Path: "huge", Content: strings.Repeat("a", MaxBatchBytes+1)}})
		require.Len(t, batches, 1)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, MakeBatches(nil))
	})
}

func newUploadServer(t *testing.T, fail bool) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/batch-upload", r.URL.Path)
		assert.Contains(t, r.Header.Get("Authorization"), "Bearer ")
		var body struct {
			Blobs []uploadBlob `json:"blobs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotEmpty(t, body.Blobs)
		if fail {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestRunUploadsAndPersistsManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "lib/util.go", "package lib\n")
	writeFile(t, root, "node_modules/dep.js", "skip me")
	writeFile(t, root, ".hidden/secret.go", "skip me")

	server, calls := newUploadServer(t, false)
	idx, err := New(root, NewUploader(server.URL, "tok"))
	require.NoError(t, err)

	result, err := idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Uploaded)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, *calls)
	assert.FileExists(t, filepath.Join(root, IndexDir, IndexFile))
}

func TestRunSkipsUnchangedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")

	server, calls := newUploadServer(t, false)
	idx, err := New(root, NewUploader(server.URL, "tok"))
	require.NoError(t, err)

	_, err = idx.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, *calls)

	// Second run re-reads the manifest; nothing changed, nothing uploads.
	idx2, err := New(root, NewUploader(server.URL, "tok"))
	require.NoError(t, err)
	result, err := idx2.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Uploaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, *calls)
}

func TestFailedUploadKeepsPreviousManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")

	server, _ := newUploadServer(t, true)
	idx, err := New(root, NewUploader(server.URL, "bad"))
	require.NoError(t, err)

	_, err = idx.Run(context.Background())
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(root, IndexDir, IndexFile))

	// After the backend recovers, the same blobs are still pending.
	good, calls := newUploadServer(t, false)
	idx2, err := New(root, NewUploader(good.URL, "tok"))
	require.NoError(t, err)
	result, err := idx2.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Uploaded)
	assert.Equal(t, 1, *calls)
}

func TestGitignorePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.log\ngenerated/\nsecrets.yaml\n")
	writeFile(t, root, "app.go", "package app\n")
	writeFile(t, root, "debug.log", "noise")
	writeFile(t, root, "generated/code.go", "package generated\n")
	writeFile(t, root, "secrets.yaml", "key: value\n")

	idx, err := New(root, nil)
	require.NoError(t, err)

	result, err := idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
}

func TestOversizedAndBinaryFilesAreSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ok.go", "package ok\n")
	writeFile(t, root, "huge.go", strings.Repeat("x", MaxBlobSize+1))
	writeFile(t, root, "img.png", "binary-ish")
	require.NoError(t, os.WriteFile(filepath.Join(root, "nulls.go"), []byte("pack\x00age"), 0o644))

	idx, err := New(root, nil)
	require.NoError(t, err)
	result, err := idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
}

func TestManifestRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), IndexDir, IndexFile)
	manifest := Manifest{Entries: map[string]BlobEntry{
		"abc": {Path: "a.go", BlobName: "abc", Mtime: 123, Size: 10},
	}}
	require.NoError(t, saveManifest(path, manifest))

	loaded := loadManifest(path)
	assert.Equal(t, manifest.Entries, loaded.Entries)
	assert.NotZero(t, loaded.LastIndexed)

	// Corrupt manifest loads as empty.
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0o644))
	assert.Empty(t, loadManifest(path).Entries)
}
