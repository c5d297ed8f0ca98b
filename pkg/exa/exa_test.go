package exa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dianel555/DSkills/pkg/httpclient"
)

func testClient(serverURL string) *Client {
	return NewClient(Config{APIURL: serverURL, APIKey: "test-key"})
}

func newFastRetryClient() *httpclient.Client {
	return httpclient.New(
		httpclient.WithAttempts(4),
		httpclient.WithBackoff(time.Millisecond, 5*time.Millisecond),
	)
}

func TestSearchRequestBody(t *testing.T) {
	t.Run("minimal", func(t *testing.T) {
		body := SearchRequest{Query: "golang"}.body()
		assert.Equal(t, map[string]any{"query": "golang"}, body)
	})

	t.Run("full", func(t *testing.T) {
		body := SearchRequest{
			Query:          "golang",
			NumResults:     5,
			Type:           "neural",
			Category:       "company",
			IncludeDomains: []string{"linkedin.com"},
			StartPublished: "2025-01-01",
			Contents:       map[string]any{"text": true},
		}.body()
		assert.Equal(t, 5, body["numResults"])
		assert.Equal(t, "neural", body["type"])
		assert.Equal(t, "company", body["category"])
		assert.Equal(t, []string{"linkedin.com"}, body["includeDomains"])
		assert.Equal(t, "2025-01-01", body["startPublishedDate"])
		assert.Equal(t, map[string]any{"text": true}, body["contents"])
		assert.NotContains(t, body, "excludeDomains")
		assert.NotContains(t, body, "livecrawl")
	})
}

func TestSearch(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"results": [{"title": "Go"}]}`))
	}))
	defer server.Close()

	out, err := testClient(server.URL).Search(context.Background(), SearchRequest{Query: "go", NumResults: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"results": [{"title": "Go"}]}`, string(out))
	assert.Equal(t, "go", captured["query"])
	assert.Equal(t, float64(3), captured["numResults"])
}

func TestGetContents(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contents", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).GetContents(context.Background(), ContentsRequest{
		URLs:      []string{"https://example.com"},
		Text:      map[string]any{"maxCharacters": 2000},
		Summary:   true,
		Livecrawl: "fallback",
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"https://example.com"}, captured["urls"])
	assert.Equal(t, map[string]any{"maxCharacters": float64(2000)}, captured["text"])
	assert.Equal(t, true, captured["summary"])
	assert.Equal(t, "fallback", captured["livecrawl"])
	assert.NotContains(t, captured, "highlights")
}

func TestCodeContextClampsTokens(t *testing.T) {
	var bodies []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/context", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	ctx := context.Background()
	for _, tokens := range []int{0, 500, 5000, 100000} {
		_, err := client.CodeContext(ctx, "http server", tokens)
		require.NoError(t, err)
	}

	require.Len(t, bodies, 4)
	assert.NotContains(t, bodies[0], "tokensNum")
	assert.Equal(t, float64(1000), bodies[1]["tokensNum"])
	assert.Equal(t, float64(5000), bodies[2]["tokensNum"])
	assert.Equal(t, float64(50000), bodies[3]["tokensNum"])
}

func TestResearchEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/research/v0/tasks":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "exa-research", body["model"])
			w.Write([]byte(`{"id": "task-1"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/research/v0/tasks/task-1":
			w.Write([]byte(`{"id": "task-1", "status": "running"}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	out, err := client.StartResearch(context.Background(), "compare databases", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "task-1"}`, string(out))

	out, err = client.CheckResearch(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Contains(t, string(out), "running")
}

func TestRetryBudgetIsFourAttempts(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{APIURL: server.URL, APIKey: "k"})
	// Shrink the backoff so the test runs quickly.
	client.http = newFastRetryClient()
	_, err := client.Search(context.Background(), SearchRequest{Query: "q"})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("EXA_API_KEY", "")
	t.Setenv("EXA_API_URL", "")

	_, err := LoadConfig("", "")
	require.Error(t, err)

	cfg, err := LoadConfig("https://exa.internal/", "sk-exa")
	require.NoError(t, err)
	assert.Equal(t, "https://exa.internal", cfg.APIURL)

	cfg, err = LoadConfig("", "sk-exa")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
}
