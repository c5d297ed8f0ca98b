package exa

import (
	"context"

	"github.com/Dianel555/DSkills/pkg/config"
)

// ConnectionTest is the result of a probe search.
type ConnectionTest struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ConfigInfo is the display form of the Exa skill configuration.
type ConfigInfo struct {
	APIURL         string          `json:"EXA_API_URL"`
	APIKey         string          `json:"EXA_API_KEY"`
	Debug          bool            `json:"EXA_DEBUG"`
	ConfigStatus   string          `json:"config_status"`
	ConnectionTest *ConnectionTest `json:"connection_test,omitempty"`
}

// GetConfigInfo reports the effective configuration with the API key
// masked. When testConnection is set it runs a one-result probe search.
func GetConfigInfo(ctx context.Context, apiURL, apiKey string, testConnection bool) ConfigInfo {
	cfg, err := LoadConfig(apiURL, apiKey)
	info := ConfigInfo{
		APIURL: cfg.APIURL,
		APIKey: config.MaskKey(cfg.APIKey),
		Debug:  cfg.Debug,
	}
	if err != nil {
		info.APIKey = "Not configured"
		info.ConfigStatus = "Error: " + err.Error()
		return info
	}
	info.ConfigStatus = "OK"

	if testConnection {
		client := NewClient(cfg)
		if _, err := client.Search(ctx, SearchRequest{Query: "test", NumResults: 1}); err != nil {
			info.ConnectionTest = &ConnectionTest{Status: "Error", Message: err.Error()}
		} else {
			info.ConnectionTest = &ConnectionTest{Status: "OK", Message: "API connection successful"}
		}
	}
	return info
}
