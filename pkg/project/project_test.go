package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMemories(t *testing.T) {
	root := t.TempDir()
	store, err := NewMemories(root)
	require.NoError(t, err)

	t.Run("write and read", func(t *testing.T) {
		require.NoError(t, store.Write("architecture", "# Notes\nuses hexagonal layout"))
		content, err := store.Read("architecture")
		require.NoError(t, err)
		assert.Contains(t, content, "hexagonal")
		assert.FileExists(t, filepath.Join(root, ".dskills", "memories", "architecture.md"))
	})

	t.Run("list sorted", func(t *testing.T) {
		require.NoError(t, store.Write("zebra", "z"))
		require.NoError(t, store.Write("alpha", "a"))
		names, err := store.List()
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "architecture", "zebra"}, names)
	})

	t.Run("edit requires existing", func(t *testing.T) {
		require.Error(t, store.Edit("missing", "content"))
		require.NoError(t, store.Edit("alpha", "updated"))
		content, err := store.Read("alpha")
		require.NoError(t, err)
		assert.Equal(t, "updated", content)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete("zebra"))
		_, err := store.Read("zebra")
		require.Error(t, err)
		require.Error(t, store.Delete("zebra"))
	})

	t.Run("path traversal rejected", func(t *testing.T) {
		require.Error(t, store.Write("../escape", "x"))
		require.Error(t, store.Write("sub/dir", "x"))
		_, err := store.Read("..\\windows")
		require.Error(t, err)
		require.Error(t, store.Write("", "x"))
	})

	t.Run("empty store lists empty", func(t *testing.T) {
		fresh, err := NewMemories(t.TempDir())
		require.NoError(t, err)
		names, err := fresh.List()
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}

func setupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"main.go":              "package main\nfunc main() {}\n",
		"pkg/util/strings.go":  "package util\nfunc Reverse(s string) string { return s }\n",
		"pkg/util/numbers.go":  "package util\nfunc Abs(n int) int { return n }\n",
		"docs/readme.md":       "# Docs\nreverse a string\n",
		"node_modules/x/y.js":  "function reverse() {}\n",
		".git/config":          "[core]\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestListDir(t *testing.T) {
	root := setupTree(t)

	t.Run("non-recursive", func(t *testing.T) {
		entries, err := ListDir(root, ".", false, 0)
		require.NoError(t, err)
		paths := entryPaths(entries)
		assert.Contains(t, paths, "main.go")
		assert.Contains(t, paths, "pkg")
		assert.Contains(t, paths, "docs")
		assert.NotContains(t, paths, "pkg/util")
		assert.NotContains(t, paths, "node_modules")
		assert.NotContains(t, paths, ".git")
	})

	t.Run("recursive", func(t *testing.T) {
		entries, err := ListDir(root, ".", true, 0)
		require.NoError(t, err)
		paths := entryPaths(entries)
		assert.Contains(t, paths, "pkg/util/strings.go")
		assert.NotContains(t, paths, "node_modules/x/y.js")
	})

	t.Run("max depth", func(t *testing.T) {
		entries, err := ListDir(root, ".", true, 1)
		require.NoError(t, err)
		paths := entryPaths(entries)
		assert.Contains(t, paths, "pkg")
		assert.NotContains(t, paths, "pkg/util")
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := ListDir(root, "nope", false, 0)
		require.Error(t, err)
	})
}

func entryPaths(entries []Entry) []string {
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.Path)
	}
	return paths
}

func TestFindFiles(t *testing.T) {
	root := setupTree(t)

	matches, err := FindFiles(root, "**/*.go")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main.go", "pkg/util/strings.go", "pkg/util/numbers.go"}, matches)

	matches, err = FindFiles(root, "*.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/readme.md"}, matches)

	_, err = FindFiles(root, "[invalid")
	require.Error(t, err)
}

func TestGrep(t *testing.T) {
	root := setupTree(t)

	t.Run("basic", func(t *testing.T) {
		matches, err := Grep(root, `func Reverse`, GrepOptions{})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "pkg/util/strings.go", matches[0].File)
		assert.Equal(t, 2, matches[0].Line)
	})

	t.Run("ignore case with file pattern", func(t *testing.T) {
		matches, err := Grep(root, `REVERSE`, GrepOptions{FilePattern: "**/*.md", IgnoreCase: true})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "docs/readme.md", matches[0].File)
	})

	t.Run("excluded dirs are not searched", func(t *testing.T) {
		matches, err := Grep(root, `function reverse`, GrepOptions{})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("invalid regex", func(t *testing.T) {
		_, err := Grep(root, `(unclosed`, GrepOptions{})
		require.Error(t, err)
	})
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"server": {"port": 8080}}`), 0o644))
	config, err := ReadConfig(jsonPath, "")
	require.NoError(t, err)
	assert.Equal(t, float64(8080), config["server"].(map[string]any)["port"])

	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("server:\n  host: localhost\n"), 0o644))
	config, err = ReadConfig(yamlPath, "")
	require.NoError(t, err)
	assert.Equal(t, "localhost", config["server"].(map[string]any)["host"])

	txtPath := filepath.Join(dir, "config.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o644))
	_, err = ReadConfig(txtPath, "")
	require.Error(t, err)

	_, err = ReadConfig(filepath.Join(dir, "missing.json"), "")
	require.Error(t, err)
}

func TestSetConfig(t *testing.T) {
	t.Run("json nested key with typed value", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"server": {"port": 8080}}`), 0o644))

		value, err := SetConfig(path, "server.port", "9090")
		require.NoError(t, err)
		assert.Equal(t, float64(9090), value)

		config, err := ReadConfig(path, "")
		require.NoError(t, err)
		assert.Equal(t, float64(9090), config["server"].(map[string]any)["port"])
	})

	t.Run("yaml creates intermediate maps", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log_level: INFO\n"), 0o644))

		_, err := SetConfig(path, "dashboard.enabled", "true")
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var config map[string]any
		require.NoError(t, yaml.Unmarshal(data, &config))
		assert.Equal(t, true, config["dashboard"].(map[string]any)["enabled"])
		assert.Equal(t, "INFO", config["log_level"])
	})

	t.Run("unparseable value stays a string", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

		value, err := SetConfig(path, "name", "hello world")
		require.NoError(t, err)
		assert.Equal(t, "hello world", value)
	})

	t.Run("cannot traverse scalar", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0o644))
		_, err := SetConfig(path, "a.b", "2")
		require.Error(t, err)
	})
}
