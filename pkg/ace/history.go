package ace

import "strings"

// ChatMessage is one turn of conversation history in the wire format
// shared by all enhancer endpoints.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

var (
	userPrefixes      = []string{"User:", "用户:"}
	assistantPrefixes = []string{"AI:", "Assistant:", "助手:"}
)

// ParseChatHistory splits a plain-text transcript into messages. Lines
// starting with a role prefix open a new message; other lines continue
// the current one. Text before the first prefix is dropped.
func ParseChatHistory(transcript string) []ChatMessage {
	var messages []ChatMessage
	var currentRole string
	var currentLines []string

	flush := func() {
		if currentRole != "" {
			messages = append(messages, ChatMessage{
				Role:    currentRole,
				Content: strings.Join(currentLines, "\n"),
			})
		}
	}

	for _, line := range strings.Split(transcript, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if currentRole != "" {
				currentLines = append(currentLines, "")
			}
			continue
		}

		role, content := matchRolePrefix(trimmed)
		if role != "" {
			flush()
			currentRole = role
			currentLines = []string{content}
		} else if currentRole != "" {
			currentLines = append(currentLines, line)
		}
	}
	flush()

	return messages
}

func matchRolePrefix(line string) (role, content string) {
	for _, prefix := range userPrefixes {
		if strings.HasPrefix(line, prefix) {
			return "user", strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	for _, prefix := range assistantPrefixes {
		if strings.HasPrefix(line, prefix) {
			return "assistant", strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return "", ""
}

// IsChineseText reports whether text is primarily Chinese: three or
// more CJK characters, or at least 10% of the non-whitespace runes.
func IsChineseText(text string) bool {
	chinese := 0
	nonSpace := 0
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		nonSpace++
		if r >= 0x4e00 && r <= 0x9fa5 {
			chinese++
		}
	}
	if chinese == 0 {
		return false
	}
	if chinese >= 3 {
		return true
	}
	return nonSpace > 0 && float64(chinese)/float64(nonSpace) >= 0.1
}
