// Package project implements local project navigation tools: named
// Markdown memories, directory listing, glob find, regex search and
// structured config file editing.
package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// MemoriesDir is where memories live, relative to the project root.
const MemoriesDir = ".dskills/memories"

// Memories is a store of named Markdown notes under one project.
type Memories struct {
	dir string
}

// NewMemories creates a store rooted at <projectRoot>/.dskills/memories.
func NewMemories(projectRoot string) (*Memories, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, errors.Wrap(err, "invalid project root")
	}
	return &Memories{dir: filepath.Join(root, filepath.FromSlash(MemoriesDir))}, nil
}

// resolve maps a memory name to its file path, rejecting anything that
// would escape the memories directory.
func (m *Memories) resolve(name string) (string, error) {
	if name == "" {
		return "", errors.New("memory name is required")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) {
		return "", errors.Errorf("invalid memory name %q", name)
	}
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return filepath.Join(m.dir, name), nil
}

// Write creates or replaces a memory.
func (m *Memories) Write(name, content string) error {
	path, err := m.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create memories directory")
	}
	return errors.Wrapf(os.WriteFile(path, []byte(content), 0o644), "failed to write memory %q", name)
}

// Read returns a memory's content.
func (m *Memories) Read(name string) (string, error) {
	path, err := m.resolve(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Errorf("memory %q not found", name)
		}
		return "", errors.Wrapf(err, "failed to read memory %q", name)
	}
	return string(data), nil
}

// Edit replaces an existing memory's content; a missing memory is an
// error, unlike Write.
func (m *Memories) Edit(name, content string) error {
	path, err := m.resolve(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Errorf("memory %q not found", name)
		}
		return errors.Wrapf(err, "failed to stat memory %q", name)
	}
	return errors.Wrapf(os.WriteFile(path, []byte(content), 0o644), "failed to edit memory %q", name)
}

// Delete removes a memory.
func (m *Memories) Delete(name string) error {
	path, err := m.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Errorf("memory %q not found", name)
		}
		return errors.Wrapf(err, "failed to delete memory %q", name)
	}
	return nil
}

// List returns all memory names, sorted.
func (m *Memories) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrap(err, "failed to list memories")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".md"))
	}
	sort.Strings(names)
	return names, nil
}
