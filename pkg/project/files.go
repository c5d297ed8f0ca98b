package project

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/Dianel555/DSkills/pkg/ace"
)

// Entry is one item in a directory listing.
type Entry struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size,omitempty"`
}

// skipDir reports whether a directory is excluded from every file tool,
// matching the indexer's exclude set.
func skipDir(name string) bool {
	return ace.ExcludeDirs[name] || strings.HasPrefix(name, ".")
}

// ListDir lists the contents of a directory under the project root.
// With recursive set it descends up to maxDepth levels (0 = unlimited).
func ListDir(root, rel string, recursive bool, maxDepth int) ([]Entry, error) {
	base := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(base)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", rel)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", rel)
	}

	var entries []Entry
	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if path == base {
			return nil
		}
		relPath, err := filepath.Rel(base, path)
		if err != nil {
			return nil
		}
		depth := strings.Count(filepath.ToSlash(relPath), "/") + 1

		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			entries = append(entries, Entry{Path: filepath.ToSlash(relPath), IsDir: true})
			if !recursive || (maxDepth > 0 && depth >= maxDepth) {
				return filepath.SkipDir
			}
			return nil
		}

		entry := Entry{Path: filepath.ToSlash(relPath)}
		if info, err := d.Info(); err == nil {
			entry.Size = info.Size()
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing failed")
	}
	return entries, nil
}

// FindFiles returns project-relative paths matching a doublestar glob
// such as "**/*.go".
func FindFiles(root, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid pattern %q", pattern)
	}

	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ok, _ := doublestar.Match(pattern, rel); ok {
			matches = append(matches, rel)
		} else if ok, _ := doublestar.Match(pattern, d.Name()); ok {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "find failed")
	}
	return matches, nil
}

// Match is one grep hit.
type Match struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// GrepOptions restricts a search.
type GrepOptions struct {
	FilePattern string // doublestar glob; empty matches all files
	IgnoreCase  bool
}

// Grep searches project files for a regex and returns per-line matches.
func Grep(root, pattern string, opts GrepOptions) ([]Match, error) {
	if opts.IgnoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(err, "invalid regex")
	}
	if opts.FilePattern != "" && !doublestar.ValidatePattern(opts.FilePattern) {
		return nil, errors.Errorf("invalid file pattern %q", opts.FilePattern)
	}

	var matches []Match
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if opts.FilePattern != "" {
			relOK, _ := doublestar.Match(opts.FilePattern, rel)
			nameOK, _ := doublestar.Match(opts.FilePattern, d.Name())
			if !relOK && !nameOK {
				return nil
			}
		}

		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if re.MatchString(line) {
				matches = append(matches, Match{File: rel, Line: lineNo, Text: line})
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "search failed")
	}
	return matches, nil
}
