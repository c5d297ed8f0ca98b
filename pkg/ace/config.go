// Package ace implements the semantic code index and prompt enhancement
// skill: an API client for the ACE enhancer endpoints, third-party
// enhancer backends, a local keyword search fallback and the project
// indexer under ace/indexer.
package ace

import (
	"strings"

	"github.com/Dianel555/DSkills/pkg/config"
)

// Endpoint names accepted by enhance requests.
const (
	EndpointNew    = "new"
	EndpointOld    = "old"
	EndpointClaude = "claude"
	EndpointOpenAI = "openai"
	EndpointGemini = "gemini"
)

// Config holds the resolved ACE skill configuration. The native
// enhancer endpoints use BaseURL/Token; the claude, openai and gemini
// endpoints use the PROMPT_ENHANCER_* settings.
type Config struct {
	BaseURL  string
	Token    string
	Endpoint string

	ThirdPartyBaseURL string
	ThirdPartyToken   string
	ThirdPartyModel   string
}

// LoadConfig resolves configuration from flag overrides and the
// environment. Missing values are not an error here: an unconfigured
// enhancer degrades to returning the original prompt.
func LoadConfig(baseURL, token, endpoint string) Config {
	return Config{
		BaseURL:           strings.TrimRight(config.Resolve(baseURL, "ACE_API_URL", ""), "/"),
		Token:             config.Resolve(token, "ACE_API_TOKEN", ""),
		Endpoint:          strings.ToLower(config.Resolve(endpoint, "ACE_ENHANCER_ENDPOINT", EndpointNew)),
		ThirdPartyBaseURL: strings.TrimRight(config.Resolve("", "PROMPT_ENHANCER_BASE_URL", ""), "/"),
		ThirdPartyToken:   config.Resolve("", "PROMPT_ENHANCER_TOKEN", ""),
		ThirdPartyModel:   config.Resolve("", "PROMPT_ENHANCER_MODEL", ""),
	}
}

// IsThirdParty reports whether the configured endpoint dispatches to an
// external model provider instead of the ACE API.
func (c Config) IsThirdParty() bool {
	switch c.Endpoint {
	case EndpointClaude, EndpointOpenAI, EndpointGemini:
		return true
	default:
		return false
	}
}

// ThirdPartyModelName returns the configured model, or the default for
// the selected endpoint.
func (c Config) ThirdPartyModelName() string {
	if c.ThirdPartyModel != "" {
		return c.ThirdPartyModel
	}
	switch c.Endpoint {
	case EndpointClaude:
		return DefaultClaudeModel
	case EndpointOpenAI:
		return DefaultOpenAIModel
	case EndpointGemini:
		return DefaultGeminiModel
	default:
		return DefaultModel
	}
}

// Info is the display form of the ACE configuration.
type Info struct {
	BaseURL              string `json:"base_url"`
	Endpoint             string `json:"endpoint"`
	TokenConfigured      bool   `json:"token_configured"`
	ThirdPartyConfigured bool   `json:"third_party_configured"`
}

// GetInfo summarizes the configuration without exposing tokens.
func (c Config) GetInfo() Info {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = "(not configured)"
	}
	return Info{
		BaseURL:              baseURL,
		Endpoint:             c.Endpoint,
		TokenConfigured:      c.Token != "",
		ThirdPartyConfigured: c.ThirdPartyBaseURL != "" && c.ThirdPartyToken != "",
	}
}
