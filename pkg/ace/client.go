package ace

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Dianel555/DSkills/pkg/httpclient"
)

// sessionID is stable for the lifetime of the process so the backend
// can correlate requests from one invocation.
var sessionID = uuid.NewString()

// SessionID returns the per-process session identifier.
func SessionID() string {
	return sessionID
}

// Enhancement is the result of an enhance or iterate operation.
type Enhancement struct {
	EnhancedPrompt string `json:"enhanced_prompt"`
	Note           string `json:"note,omitempty"`
}

// Client calls the ACE enhancer API.
type Client struct {
	cfg  Config
	http *httpclient.Client
}

// NewClient creates a Client for the given configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: httpclient.New(httpclient.WithTimeout(180 * time.Second)),
	}
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", UserAgent)
	h.Set("x-request-id", uuid.NewString())
	h.Set("x-request-session-id", sessionID)
	if c.cfg.Token != "" {
		h.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	return h
}

// Enhance rewrites a prompt using conversation history. Third-party
// endpoints dispatch to the configured model provider; without any API
// configured the original prompt comes back with a note.
func (c *Client) Enhance(ctx context.Context, prompt, transcript string) (Enhancement, error) {
	if c.cfg.IsThirdParty() {
		full := strings.ReplaceAll(enhancePromptTemplate, "{original_prompt}", prompt)
		if IsChineseText(prompt) {
			full += "\n\n请用中文回复。"
		}
		return c.enhanceThirdParty(ctx, full, transcript)
	}

	if c.cfg.BaseURL == "" {
		return Enhancement{EnhancedPrompt: prompt, Note: "No API configured, returning original"}, nil
	}

	history := ParseChatHistory(transcript)
	if c.cfg.Endpoint == EndpointOld {
		return c.callOldEndpoint(ctx, prompt, history, true)
	}
	return c.callNewEndpoint(ctx, prompt, history, false)
}

// Iterate refines an already-enhanced prompt while preserving edits the
// user made to the previous enhancement.
func (c *Client) Iterate(ctx context.Context, original, previous, current, transcript string) (Enhancement, error) {
	replacer := strings.NewReplacer(
		"{original_prompt}", original,
		"{previous_enhanced}", previous,
		"{current_prompt}", current,
	)
	iterPrompt := replacer.Replace(iterativeEnhanceTemplate)

	if c.cfg.IsThirdParty() {
		if IsChineseText(iterPrompt) {
			iterPrompt += "\n\n请用中文回复。"
		}
		return c.enhanceThirdParty(ctx, iterPrompt, transcript)
	}

	if c.cfg.BaseURL == "" {
		return Enhancement{EnhancedPrompt: current, Note: "No API configured, returning current"}, nil
	}

	history := ParseChatHistory(transcript)
	if c.cfg.Endpoint == EndpointOld {
		return c.callOldEndpointRaw(ctx, iterPrompt, history)
	}
	return c.callNewEndpoint(ctx, iterPrompt, history, true)
}

type textNode struct {
	Content string `json:"content"`
}

type promptNode struct {
	ID       int      `json:"id"`
	Type     int      `json:"type"`
	TextNode textNode `json:"text_node"`
}

// callNewEndpoint posts to /prompt-enhancer. When unwrap is set the
// response text is stripped of <augment-enhanced-prompt> tags (the
// iterative template instructs the model to wrap its answer).
func (c *Client) callNewEndpoint(ctx context.Context, prompt string, history []ChatMessage, unwrap bool) (Enhancement, error) {
	payload := map[string]any{
		"nodes":           []promptNode{{ID: 0, Type: 0, TextNode: textNode{Content: prompt}}},
		"chat_history":    messagesOrEmpty(history),
		"conversation_id": nil,
		"model":           DefaultModel,
		"mode":            "CHAT",
	}

	var resp struct {
		Text string `json:"text"`
	}
	if err := c.http.PostJSON(ctx, c.cfg.BaseURL+"/prompt-enhancer", c.headers(), payload, &resp); err != nil {
		return Enhancement{}, err
	}

	text := resp.Text
	if text == "" {
		text = prompt
	}
	if unwrap {
		text = extractEnhancedPrompt(text)
	}
	return Enhancement{EnhancedPrompt: text}, nil
}

func (c *Client) callOldEndpoint(ctx context.Context, prompt string, history []ChatMessage, applyTemplate bool) (Enhancement, error) {
	message := prompt
	if applyTemplate {
		message = strings.ReplaceAll(enhancePromptTemplate, "{original_prompt}", prompt)
	}
	guideline := ""
	if IsChineseText(prompt) {
		guideline = "Please respond in Chinese (Simplified Chinese). 请用中文回复。"
	}
	return c.postChatStream(ctx, message, history, guideline)
}

func (c *Client) callOldEndpointRaw(ctx context.Context, prompt string, history []ChatMessage) (Enhancement, error) {
	guideline := ""
	if IsChineseText(prompt) {
		guideline = "Please respond in Chinese (Simplified Chinese). 请用中文回复。"
	}
	return c.postChatStream(ctx, prompt, history, guideline)
}

func (c *Client) postChatStream(ctx context.Context, message string, history []ChatMessage, guideline string) (Enhancement, error) {
	payload := oldEndpointPayload(message, history, guideline)
	body, err := c.http.PostText(ctx, c.cfg.BaseURL+"/chat-stream", c.headers(), payload)
	if err != nil {
		return Enhancement{}, err
	}

	text := parseChatStream(body)
	enhanced := replaceToolNames(extractEnhancedPrompt(text))
	return Enhancement{EnhancedPrompt: enhanced}, nil
}

// oldEndpointPayload mirrors the full request shape the legacy
// /chat-stream endpoint validates; most fields are unused placeholders
// but must be present.
func oldEndpointPayload(message string, history []ChatMessage, guideline string) map[string]any {
	return map[string]any{
		"model":                             DefaultModel,
		"path":                              nil,
		"prefix":                            nil,
		"selected_code":                     nil,
		"suffix":                            nil,
		"message":                           message,
		"chat_history":                      messagesOrEmpty(history),
		"lang":                              nil,
		"blobs":                             map[string]any{"checkpoint_id": nil, "added_blobs": []string{}, "deleted_blobs": []string{}},
		"user_guided_blobs":                 []string{},
		"context_code_exchange_request_id":  nil,
		"external_source_ids":               []string{},
		"disable_auto_external_sources":     nil,
		"user_guidelines":                   guideline,
		"workspace_guidelines":              "",
		"feature_detection_flags":           map[string]any{"support_parallel_tool_use": nil},
		"third_party_override":              nil,
		"tool_definitions":                  []string{},
		"nodes":                             []promptNode{{ID: 1, Type: 0, TextNode: textNode{Content: message}}},
		"mode":                              "CHAT",
		"agent_memories":                    nil,
		"persona_type":                      nil,
		"rules":                             []string{},
		"silent":                            nil,
		"enable_parallel_tool_use":          nil,
		"conversation_id":                   nil,
		"system_prompt":                     nil,
	}
}

func messagesOrEmpty(history []ChatMessage) []ChatMessage {
	if history == nil {
		return []ChatMessage{}
	}
	return history
}

// parseChatStream joins the "text" fields of an SSE or line-delimited
// JSON stream. A body with no parseable chunks is returned as-is.
func parseChatStream(body string) string {
	var combined strings.Builder
	found := false

	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if line == "" || line == "[DONE]" {
			continue
		}

		var chunk struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			continue
		}
		if chunk.Text != "" {
			combined.WriteString(chunk.Text)
			found = true
		}
	}

	if !found {
		return body
	}
	return combined.String()
}

var enhancedPromptRe = regexp.MustCompile(`(?s)<augment-enhanced-prompt(?:\s+[^>]*)?>\s*(.*?)\s*</augment-enhanced-prompt\s*>`)

// extractEnhancedPrompt unwraps the tagged answer from the model reply,
// falling back to the whole text when the tags are missing or empty.
func extractEnhancedPrompt(text string) string {
	if m := enhancedPromptRe.FindStringSubmatch(text); m != nil {
		if extracted := strings.TrimSpace(m[1]); extracted != "" {
			return extracted
		}
	}
	return text
}

// replaceToolNames rewrites Augment tool references to this CLI's tool
// names so enhanced prompts stay actionable.
func replaceToolNames(text string) string {
	text = strings.ReplaceAll(text, "codebase-retrieval", "search_context")
	return strings.ReplaceAll(text, "codebase_retrieval", "search_context")
}
