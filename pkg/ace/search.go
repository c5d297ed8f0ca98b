package ace

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// SearchResult is one file scored by keyword hits.
type SearchResult struct {
	File  string `json:"file"`
	Score int    `json:"score"`
}

// SearchResponse is the search-context payload.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Query   string         `json:"query"`
	Mode    string         `json:"mode"`
}

var wordRe = regexp.MustCompile(`\w+`)

// SearchContext scores project files by how many query keywords appear
// in them and returns the top ten. This is the local fallback used when
// no retrieval backend is reachable.
func SearchContext(projectRoot, query string) (SearchResponse, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return SearchResponse{}, errors.Wrap(err, "invalid project root")
	}

	var keywords []string
	for _, word := range wordRe.FindAllString(strings.ToLower(query), -1) {
		if len(word) > 2 {
			keywords = append(keywords, word)
		}
	}

	var results []SearchResult
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (ExcludeDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if !TextExtensions[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		content := strings.ToLower(string(data))

		score := 0
		for _, kw := range keywords {
			if strings.Contains(content, kw) {
				score++
			}
		}
		if score > 0 {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			results = append(results, SearchResult{File: filepath.ToSlash(rel), Score: score})
		}
		return nil
	})
	if err != nil {
		return SearchResponse{}, errors.Wrap(err, "search failed")
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > 10 {
		results = results[:10]
	}

	return SearchResponse{Results: results, Query: query, Mode: "local_fallback"}, nil
}
