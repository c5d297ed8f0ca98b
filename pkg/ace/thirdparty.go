package ace

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// enhanceThirdParty dispatches a fully templated prompt to the
// configured model provider and unwraps the tagged answer.
func (c *Client) enhanceThirdParty(ctx context.Context, prompt, transcript string) (Enhancement, error) {
	if c.cfg.ThirdPartyBaseURL == "" || c.cfg.ThirdPartyToken == "" {
		return Enhancement{}, errors.Errorf(
			"PROMPT_ENHANCER_BASE_URL and PROMPT_ENHANCER_TOKEN required for %q endpoint", c.cfg.Endpoint)
	}

	history := ParseChatHistory(transcript)
	model := c.cfg.ThirdPartyModelName()

	var text string
	var err error
	switch c.cfg.Endpoint {
	case EndpointClaude:
		text, err = c.callClaude(ctx, prompt, history, model)
	case EndpointOpenAI:
		text, err = c.callOpenAI(ctx, prompt, history, model)
	case EndpointGemini:
		text, err = c.callGemini(ctx, prompt, history, model)
	default:
		return Enhancement{}, errors.Errorf("unknown endpoint: %s", c.cfg.Endpoint)
	}
	if err != nil {
		return Enhancement{}, err
	}

	if text == "" {
		text = prompt
	}
	return Enhancement{EnhancedPrompt: replaceToolNames(extractEnhancedPrompt(text))}, nil
}

// stripVersionSuffix removes a trailing API version path segment so
// base URLs work whether or not the user included it.
func stripVersionSuffix(base, suffix string) string {
	return strings.TrimSuffix(strings.TrimRight(base, "/"), suffix)
}

func (c *Client) callClaude(ctx context.Context, prompt string, history []ChatMessage, model string) (string, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(c.cfg.ThirdPartyToken),
		option.WithBaseURL(stripVersionSuffix(c.cfg.ThirdPartyBaseURL, "/v1")),
	)

	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, msg := range history {
		if msg.Role == "user" {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		} else {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))

	response, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		Messages:  messages,
	})
	if err != nil {
		return "", errors.Wrap(err, "Claude request failed")
	}

	var text strings.Builder
	for _, block := range response.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}
	return text.String(), nil
}

func (c *Client) callOpenAI(ctx context.Context, prompt string, history []ChatMessage, model string) (string, error) {
	clientConfig := openai.DefaultConfig(c.cfg.ThirdPartyToken)
	clientConfig.BaseURL = stripVersionSuffix(c.cfg.ThirdPartyBaseURL, "/v1") + "/v1"
	client := openai.NewClientWithConfig(clientConfig)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	response, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: 4096,
	})
	if err != nil {
		return "", errors.Wrap(err, "OpenAI request failed")
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return response.Choices[0].Message.Content, nil
}

func (c *Client) callGemini(ctx context.Context, prompt string, history []ChatMessage, model string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.cfg.ThirdPartyToken,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: stripVersionSuffix(c.cfg.ThirdPartyBaseURL, "/v1beta"),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to create Gemini client")
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		var role genai.Role = genai.RoleUser
		if msg.Role != "user" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	response, err := client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: 4096,
	})
	if err != nil {
		return "", errors.Wrap(err, "Gemini request failed")
	}
	return response.Text(), nil
}
