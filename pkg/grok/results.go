package grok

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Result is a standardized search result.
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

var fencedBlockRe = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")

// ExtractJSON normalizes a model reply into pretty-printed JSON. Fenced
// code blocks are unwrapped, and list items are standardized to
// {title,url,description} with the alias fields models tend to emit
// (link, content, snippet, summary) folded in. Unparseable replies
// become an error document carrying the first 500 bytes of raw text.
func ExtractJSON(text string) string {
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		raw := text
		if len(raw) > 500 {
			raw = raw[:500]
		}
		out, _ := json.MarshalIndent(map[string]string{
			"error": "Failed to parse JSON",
			"raw":   raw,
		}, "", "  ")
		return string(out)
	}

	if items, ok := parsed.([]any); ok {
		results := make([]Result, 0, len(items))
		for _, item := range items {
			fields, ok := item.(map[string]any)
			if !ok {
				continue
			}
			results = append(results, Result{
				Title:       stringField(fields, "title"),
				URL:         stringField(fields, "url", "link"),
				Description: stringField(fields, "description", "content", "snippet", "summary"),
			})
		}
		out, _ := json.MarshalIndent(results, "", "  ")
		return string(out)
	}

	out, _ := json.MarshalIndent(parsed, "", "  ")
	return string(out)
}

func stringField(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := fields[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
