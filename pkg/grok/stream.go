package grok

import (
	"bufio"
	"encoding/json"
	"strings"
)

// parseStreamBody reassembles a completion from an SSE response body.
// Each "data:" line carries a chunk whose delta content is concatenated.
// Some gateways answer a stream=true request with a plain JSON document,
// so when no deltas were found the whole body is tried as one response.
func parseStreamBody(body string) string {
	var content strings.Builder
	var rawLines []string

	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rawLines = append(rawLines, line)

		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			continue
		}

		var chunk chatResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) > 0 {
			content.WriteString(chunk.Choices[0].Delta.Content)
		}
	}

	if content.Len() > 0 {
		return content.String()
	}

	var whole chatResponse
	if err := json.Unmarshal([]byte(strings.Join(rawLines, "")), &whole); err == nil && len(whole.Choices) > 0 {
		return whole.Choices[0].Message.Content
	}
	return ""
}
