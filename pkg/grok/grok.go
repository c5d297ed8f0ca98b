// Package grok implements the web search skill backed by an
// OpenAI-compatible Grok chat completions endpoint. The model does the
// searching; this package shapes prompts, transport and result parsing.
package grok

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Dianel555/DSkills/pkg/config"
	"github.com/Dianel555/DSkills/pkg/httpclient"
	"github.com/Dianel555/DSkills/pkg/logger"
)

// DefaultModel is used until a model is persisted with SetModel.
const DefaultModel = "grok-4-fast"

const searchPrompt = `# Role: Search Assistant

Return search results as a JSON array. Each result must have exactly these fields:
- "title": string, result title
- "url": string, valid URL
- "description": string, 20-50 word summary

Output ONLY valid JSON array, no markdown, no explanation.

Example:
[
  {"title": "Example", "url": "https://example.com", "description": "Brief description"}
]
`

const fetchPrompt = `# Role: Web Content Fetcher

Fetch the webpage content and convert to structured Markdown:
- Preserve all headings, paragraphs, lists, tables, code blocks
- Include metadata header: source URL, title, fetch timestamp
- Do NOT summarize - return complete content
- Use UTF-8 encoding
`

// Config holds the resolved Grok skill configuration.
type Config struct {
	APIURL string
	APIKey string
	Model  string
	Debug  bool
}

// LoadConfig resolves configuration from flag overrides, the
// environment and the persisted grok-search settings file.
func LoadConfig(apiURL, apiKey string) (Config, error) {
	cfg := Config{
		APIURL: strings.TrimRight(config.Resolve(apiURL, "GROK_API_URL", ""), "/"),
		APIKey: config.Resolve(apiKey, "GROK_API_KEY", ""),
		Model:  DefaultModel,
		Debug:  config.BoolFromEnv("GROK_DEBUG"),
	}
	if settings, err := config.NewSettings("grok-search"); err == nil {
		cfg.Model = settings.GetString("model", DefaultModel)
	}

	if cfg.APIURL == "" {
		return cfg, errors.New("GROK_API_URL not configured. Set environment variable or use --api-url")
	}
	if cfg.APIKey == "" {
		return cfg, errors.New("GROK_API_KEY not configured. Set environment variable or use --api-key")
	}
	return cfg, nil
}

// SetModel persists the selected model and returns the previous one.
func SetModel(model string) (previous, configFile string, err error) {
	settings, err := config.NewSettings("grok-search")
	if err != nil {
		return "", "", err
	}
	previous, err = settings.SetString("model", model, DefaultModel)
	return previous, settings.Path(), err
}

// CurrentModel returns the persisted model, or the default.
func CurrentModel() string {
	settings, err := config.NewSettings("grok-search")
	if err != nil {
		return DefaultModel
	}
	return settings.GetString("model", DefaultModel)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Client performs search and fetch requests against a Grok endpoint.
type Client struct {
	cfg  Config
	http *httpclient.Client
}

// NewClient creates a Client for the given configuration.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg, http: httpclient.New()}
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.cfg.APIKey)
	h.Set("Content-Type", "application/json")
	return h
}

// SearchOptions shapes the user message for a search request.
type SearchOptions struct {
	Platform   string
	MinResults int
	MaxResults int
}

// Search asks the model for web search results. The raw model reply is
// returned; callers normalize it with ExtractJSON.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (string, error) {
	if opts.MinResults == 0 {
		opts.MinResults = 3
	}
	if opts.MaxResults == 0 {
		opts.MaxResults = 10
	}

	var user strings.Builder
	if needsTimeContext(query) {
		user.WriteString(localTimeContext(time.Now()))
		user.WriteString("\n")
	}
	user.WriteString(query)
	if opts.Platform != "" {
		fmt.Fprintf(&user, "\n\nFocus on platforms: %s", opts.Platform)
	}
	fmt.Fprintf(&user, "\n\nReturn %d-%d results as JSON array.", opts.MinResults, opts.MaxResults)

	return c.complete(ctx, searchPrompt, user.String())
}

// Fetch asks the model to return a webpage as structured Markdown.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	return c.complete(ctx, fetchPrompt, url+"\n\nFetch and return structured Markdown.")
}

// complete tries a non-streaming completion first and falls back to the
// streaming endpoint when the non-streaming request fails. Some proxies
// only answer large completions over SSE.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	content, err := c.completeNonStream(ctx, req)
	if err == nil {
		return content, nil
	}
	if httpclient.IsAuthError(err) {
		return "", err
	}
	logger.G(ctx).WithError(err).Debug("non-streaming completion failed, falling back to streaming")
	return c.completeStream(ctx, req)
}

func (c *Client) completeNonStream(ctx context.Context, req chatRequest) (string, error) {
	req.Stream = false
	var resp chatResponse
	if err := c.http.PostJSON(ctx, c.cfg.APIURL+"/chat/completions", c.headers(), req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) completeStream(ctx context.Context, req chatRequest) (string, error) {
	req.Stream = true
	body, err := c.http.PostText(ctx, c.cfg.APIURL+"/chat/completions", c.headers(), req)
	if err != nil {
		return "", errors.Wrap(err, "streaming completion failed")
	}
	return parseStreamBody(body), nil
}

var recencyKeywords = []string{
	"current", "now", "today", "tomorrow", "yesterday",
	"this week", "last week", "next week",
	"latest", "recent", "recently", "up-to-date",
	"当前", "现在", "今天", "最新", "最近",
}

func needsTimeContext(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range recencyKeywords {
		if strings.Contains(lower, kw) || strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

// localTimeContext renders the block prepended to recency-sensitive
// queries so the model knows what "today" means.
func localTimeContext(now time.Time) string {
	return fmt.Sprintf("[Current Time Context]\n- Date: %s (%s)\n- Time: %s\n",
		now.Format("2006-01-02"), now.Weekday(), now.Format("15:04:05"))
}
