package ace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChatHistory(t *testing.T) {
	t.Run("basic conversation", func(t *testing.T) {
		transcript := "User: how do I sort a slice?\nAssistant: use sort.Slice\nUser: thanks"
		messages := ParseChatHistory(transcript)
		require.Len(t, messages, 3)
		assert.Equal(t, ChatMessage{Role: "user", Content: "how do I sort a slice?"}, messages[0])
		assert.Equal(t, ChatMessage{Role: "assistant", Content: "use sort.Slice"}, messages[1])
		assert.Equal(t, ChatMessage{Role: "user", Content: "thanks"}, messages[2])
	})

	t.Run("multi-line messages", func(t *testing.T) {
		transcript := "User: first line\nsecond line\nAI: reply"
		messages := ParseChatHistory(transcript)
		require.Len(t, messages, 2)
		assert.Equal(t, "first line\nsecond line", messages[0].Content)
	})

	t.Run("chinese prefixes", func(t *testing.T) {
		transcript := "用户: 你好\n助手: 你好，有什么可以帮你？"
		messages := ParseChatHistory(transcript)
		require.Len(t, messages, 2)
		assert.Equal(t, "user", messages[0].Role)
		assert.Equal(t, "assistant", messages[1].Role)
	})

	t.Run("text before first prefix is dropped", func(t *testing.T) {
		messages := ParseChatHistory("preamble text\nUser: hello")
		require.Len(t, messages, 1)
		assert.Equal(t, "hello", messages[0].Content)
	})

	t.Run("empty transcript", func(t *testing.T) {
		assert.Empty(t, ParseChatHistory(""))
	})
}

func TestIsChineseText(t *testing.T) {
	assert.True(t, IsChineseText("请帮我重构这段代码"))
	assert.True(t, IsChineseText("fix 这个 bug"))
	assert.False(t, IsChineseText("fix this bug"))
	assert.False(t, IsChineseText(""))
}

func TestExtractEnhancedPrompt(t *testing.T) {
	t.Run("tagged", func(t *testing.T) {
		text := "### BEGIN ###\n<augment-enhanced-prompt>the enhanced version</augment-enhanced-prompt>\n### END ###"
		assert.Equal(t, "the enhanced version", extractEnhancedPrompt(text))
	})

	t.Run("tag with attributes", func(t *testing.T) {
		text := `<augment-enhanced-prompt lang="en"> padded </augment-enhanced-prompt >`
		assert.Equal(t, "padded", extractEnhancedPrompt(text))
	})

	t.Run("multiline body", func(t *testing.T) {
		text := "<augment-enhanced-prompt>line one\nline two</augment-enhanced-prompt>"
		assert.Equal(t, "line one\nline two", extractEnhancedPrompt(text))
	})

	t.Run("no tags returns full text", func(t *testing.T) {
		assert.Equal(t, "plain reply", extractEnhancedPrompt("plain reply"))
	})

	t.Run("empty tag returns full text", func(t *testing.T) {
		text := "<augment-enhanced-prompt>  </augment-enhanced-prompt>"
		assert.Equal(t, text, extractEnhancedPrompt(text))
	})
}

func TestReplaceToolNames(t *testing.T) {
	assert.Equal(t, "use search_context and search_context",
		replaceToolNames("use codebase-retrieval and codebase_retrieval"))
}

func TestParseChatStream(t *testing.T) {
	t.Run("sse chunks", func(t *testing.T) {
		body := "data: {\"text\":\"part one \"}\ndata: {\"text\":\"part two\"}\ndata: [DONE]\n"
		assert.Equal(t, "part one part two", parseChatStream(body))
	})

	t.Run("line-delimited json", func(t *testing.T) {
		body := "{\"text\":\"a\"}\n{\"text\":\"b\"}\n"
		assert.Equal(t, "ab", parseChatStream(body))
	})

	t.Run("unparseable body returned verbatim", func(t *testing.T) {
		assert.Equal(t, "not a stream", parseChatStream("not a stream"))
	})
}

func TestEnhanceWithoutAPIReturnsOriginal(t *testing.T) {
	client := NewClient(Config{Endpoint: EndpointNew})
	result, err := client.Enhance(context.Background(), "my prompt", "")
	require.NoError(t, err)
	assert.Equal(t, "my prompt", result.EnhancedPrompt)
	assert.Contains(t, result.Note, "No API configured")
}

func TestIterateWithoutAPIReturnsCurrent(t *testing.T) {
	client := NewClient(Config{Endpoint: EndpointNew})
	result, err := client.Iterate(context.Background(), "orig", "prev", "current edit", "")
	require.NoError(t, err)
	assert.Equal(t, "current edit", result.EnhancedPrompt)
}

func TestEnhanceNewEndpoint(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prompt-enhancer", r.URL.Path)
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("x-request-id"))
		assert.Equal(t, SessionID(), r.Header.Get("x-request-session-id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{"text": "enhanced!"})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "tok", Endpoint: EndpointNew})
	result, err := client.Enhance(context.Background(), "raw prompt", "User: hi\nAI: hello")
	require.NoError(t, err)
	assert.Equal(t, "enhanced!", result.EnhancedPrompt)

	nodes := captured["nodes"].([]any)
	require.Len(t, nodes, 1)
	history := captured["chat_history"].([]any)
	assert.Len(t, history, 2)
	assert.Equal(t, "CHAT", captured["mode"])
}

func TestEnhanceOldEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat-stream", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		message := body["message"].(string)
		assert.Contains(t, message, "NO TOOLS ALLOWED")
		assert.Contains(t, message, "my prompt")
		w.Write([]byte("data: {\"text\":\"<augment-enhanced-prompt>use codebase-retrieval first</augment-enhanced-prompt>\"}\n"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "tok", Endpoint: EndpointOld})
	result, err := client.Enhance(context.Background(), "my prompt", "")
	require.NoError(t, err)
	assert.Equal(t, "use search_context first", result.EnhancedPrompt)
}

func TestThirdPartyRequiresConfig(t *testing.T) {
	client := NewClient(Config{Endpoint: EndpointClaude})
	_, err := client.Enhance(context.Background(), "p", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROMPT_ENHANCER_BASE_URL")
}

func TestSearchContext(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "server.go"), []byte("package main // http server handler"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.md"), []byte("project notes"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "pkg", "index.js"), []byte("http server"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "image.png"), []byte("http server"), 0o644))

	resp, err := SearchContext(root, "http server handler")
	require.NoError(t, err)
	assert.Equal(t, "local_fallback", resp.Mode)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "server.go", resp.Results[0].File)
	assert.Equal(t, 3, resp.Results[0].Score)
}

func TestConfigInfo(t *testing.T) {
	cfg := Config{BaseURL: "https://ace.example", Token: "t", Endpoint: EndpointNew}
	info := cfg.GetInfo()
	assert.Equal(t, "https://ace.example", info.BaseURL)
	assert.True(t, info.TokenConfigured)
	assert.False(t, info.ThirdPartyConfigured)

	empty := Config{Endpoint: EndpointNew}.GetInfo()
	assert.Equal(t, "(not configured)", empty.BaseURL)
}

func TestThirdPartyModelName(t *testing.T) {
	assert.Equal(t, DefaultClaudeModel, Config{Endpoint: EndpointClaude}.ThirdPartyModelName())
	assert.Equal(t, DefaultOpenAIModel, Config{Endpoint: EndpointOpenAI}.ThirdPartyModelName())
	assert.Equal(t, DefaultGeminiModel, Config{Endpoint: EndpointGemini}.ThirdPartyModelName())
	assert.Equal(t, "custom", Config{Endpoint: EndpointClaude, ThirdPartyModel: "custom"}.ThirdPartyModelName())
}
