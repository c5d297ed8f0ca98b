// Package exa is a client for the Exa semantic search API covering the
// search, contents, context and research endpoints.
package exa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/Dianel555/DSkills/pkg/config"
	"github.com/Dianel555/DSkills/pkg/httpclient"
)

// DefaultAPIURL is used when EXA_API_URL is not set.
const DefaultAPIURL = "https://api.exa.ai"

// Config holds the resolved Exa skill configuration.
type Config struct {
	APIURL string
	APIKey string
	Debug  bool
}

// LoadConfig resolves configuration from flag overrides and the
// environment. The API URL always resolves; a missing key is an error.
func LoadConfig(apiURL, apiKey string) (Config, error) {
	cfg := Config{
		APIURL: trimSlash(config.Resolve(apiURL, "EXA_API_URL", DefaultAPIURL)),
		APIKey: config.Resolve(apiKey, "EXA_API_KEY", ""),
		Debug:  config.BoolFromEnv("EXA_DEBUG"),
	}
	if cfg.APIKey == "" {
		return cfg, errors.New("EXA_API_KEY not configured. Set environment variable or use --api-key")
	}
	return cfg, nil
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// Client calls the Exa API. Exa rate limits aggressively, so the retry
// budget is wider than the default and backoff is capped at 30s.
type Client struct {
	cfg  Config
	http *httpclient.Client
}

// NewClient creates a Client for the given configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		http: httpclient.New(
			httpclient.WithTimeout(60*time.Second),
			httpclient.WithAttempts(4),
			httpclient.WithBackoff(time.Second, 30*time.Second),
		),
	}
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("x-api-key", c.cfg.APIKey)
	h.Set("Content-Type", "application/json")
	return h
}

func (c *Client) post(ctx context.Context, path string, body map[string]any) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.http.PostJSON(ctx, c.cfg.APIURL+path, c.headers(), body, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.http.GetJSON(ctx, c.cfg.APIURL+path, c.headers(), &out)
	return out, err
}

// SearchRequest shapes a POST /search body. Nil and zero-valued fields
// are omitted so the API applies its own defaults.
type SearchRequest struct {
	Query             string
	NumResults        int
	Type              string
	Category          string
	Livecrawl         string
	IncludeDomains    []string
	ExcludeDomains    []string
	StartPublished    string
	EndPublished      string
	AdditionalQueries []string
	Contents          map[string]any
}

func (r SearchRequest) body() map[string]any {
	body := map[string]any{"query": r.Query}
	if r.NumResults > 0 {
		body["numResults"] = r.NumResults
	}
	if r.Type != "" {
		body["type"] = r.Type
	}
	if r.Category != "" {
		body["category"] = r.Category
	}
	if r.Livecrawl != "" {
		body["livecrawl"] = r.Livecrawl
	}
	if len(r.IncludeDomains) > 0 {
		body["includeDomains"] = r.IncludeDomains
	}
	if len(r.ExcludeDomains) > 0 {
		body["excludeDomains"] = r.ExcludeDomains
	}
	if r.StartPublished != "" {
		body["startPublishedDate"] = r.StartPublished
	}
	if r.EndPublished != "" {
		body["endPublishedDate"] = r.EndPublished
	}
	if len(r.AdditionalQueries) > 0 {
		body["additionalQueries"] = r.AdditionalQueries
	}
	if len(r.Contents) > 0 {
		body["contents"] = r.Contents
	}
	return body
}

// Search runs a semantic search.
func (c *Client) Search(ctx context.Context, req SearchRequest) (json.RawMessage, error) {
	return c.post(ctx, "/search", req.body())
}

// ContentsRequest shapes a POST /contents body.
type ContentsRequest struct {
	URLs       []string
	Text       any // true or {"maxCharacters": n}
	Highlights bool
	Summary    bool
	Livecrawl  string
}

// GetContents extracts content from the given URLs.
func (c *Client) GetContents(ctx context.Context, req ContentsRequest) (json.RawMessage, error) {
	body := map[string]any{"urls": req.URLs}
	if req.Text != nil {
		body["text"] = req.Text
	}
	if req.Highlights {
		body["highlights"] = true
	}
	if req.Summary {
		body["summary"] = true
	}
	if req.Livecrawl != "" {
		body["livecrawl"] = req.Livecrawl
	}
	return c.post(ctx, "/contents", body)
}

// CodeContext queries the code context endpoint. The token budget is
// clamped to the API's accepted 1000..50000 range; zero means default.
func (c *Client) CodeContext(ctx context.Context, query string, tokens int) (json.RawMessage, error) {
	body := map[string]any{"query": query}
	if tokens > 0 {
		if tokens < 1000 {
			tokens = 1000
		}
		if tokens > 50000 {
			tokens = 50000
		}
		body["tokensNum"] = tokens
	}
	return c.post(ctx, "/context", body)
}

// StartResearch creates an asynchronous research task.
func (c *Client) StartResearch(ctx context.Context, instructions, model string) (json.RawMessage, error) {
	if model == "" {
		model = "exa-research"
	}
	return c.post(ctx, "/research/v0/tasks", map[string]any{
		"instructions": instructions,
		"model":        model,
	})
}

// CheckResearch fetches the status of a research task.
func (c *Client) CheckResearch(ctx context.Context, taskID string) (json.RawMessage, error) {
	return c.get(ctx, "/research/v0/tasks/"+url.PathEscape(taskID))
}
