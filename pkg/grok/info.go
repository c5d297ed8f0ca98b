package grok

import (
	"context"
	"fmt"
	"time"

	"github.com/Dianel555/DSkills/pkg/config"
	"github.com/Dianel555/DSkills/pkg/httpclient"
)

// ConnectionTest is the result of probing the /models endpoint.
type ConnectionTest struct {
	Status          string   `json:"status"`
	Message         string   `json:"message"`
	ResponseTimeMS  float64  `json:"response_time_ms"`
	AvailableModels []string `json:"available_models,omitempty"`
}

// ConfigInfo is the display form of the Grok skill configuration.
type ConfigInfo struct {
	APIURL         string          `json:"GROK_API_URL"`
	APIKey         string          `json:"GROK_API_KEY"`
	Model          string          `json:"GROK_MODEL"`
	Debug          bool            `json:"GROK_DEBUG"`
	ConfigStatus   string          `json:"config_status"`
	ConnectionTest *ConnectionTest `json:"connection_test,omitempty"`
}

// GetConfigInfo reports the effective configuration with the API key
// masked. When testConnection is set it probes GET /models.
func GetConfigInfo(ctx context.Context, apiURL, apiKey string, testConnection bool) ConfigInfo {
	cfg, err := LoadConfig(apiURL, apiKey)
	info := ConfigInfo{
		APIURL: cfg.APIURL,
		APIKey: config.MaskKey(cfg.APIKey),
		Model:  cfg.Model,
		Debug:  cfg.Debug,
	}
	if err != nil {
		info.ConfigStatus = "❌ Error: " + err.Error()
		if cfg.APIURL == "" {
			info.APIURL = "Not configured"
		}
		if cfg.APIKey == "" {
			info.APIKey = "Not configured"
		}
		return info
	}
	info.ConfigStatus = "✅ Configuration Complete"

	if testConnection {
		info.ConnectionTest = testModels(ctx, cfg)
	}
	return info
}

func testModels(ctx context.Context, cfg Config) *ConnectionTest {
	type modelsResponse struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}

	client := httpclient.New(
		httpclient.WithTimeout(10*time.Second),
		httpclient.WithAttempts(1),
	)
	headers := NewClient(cfg).headers()

	start := time.Now()
	var models modelsResponse
	err := client.GetJSON(ctx, cfg.APIURL+"/models", headers, &models)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		return &ConnectionTest{Status: "❌ Connection Failed", Message: err.Error()}
	}

	test := &ConnectionTest{
		Status:         "✅ Connection Successful",
		ResponseTimeMS: elapsed,
	}
	if len(models.Data) > 0 {
		test.Message = fmt.Sprintf("Retrieved %d models", len(models.Data))
		for _, m := range models.Data {
			test.AvailableModels = append(test.AvailableModels, m.ID)
		}
	}
	return test
}
