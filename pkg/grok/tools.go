package grok

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
)

// builtinTools are the assistant's built-in web tools that compete with
// this skill. Blocking them routes all web access through the skill.
var builtinTools = []string{"WebFetch", "WebSearch"}

// ToggleResult reports the deny-list state after a toggle.
type ToggleResult struct {
	Blocked  bool     `json:"blocked"`
	DenyList []string `json:"deny_list"`
	File     string   `json:"file"`
	Message  string   `json:"message"`
}

// FindProjectRoot walks up from start until it finds a .git directory.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", errors.Wrap(err, "invalid start directory")
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("no .git directory found, use --root to specify the project root")
		}
		dir = parent
	}
}

// ToggleBuiltinTools enables or disables the built-in web tools by
// editing the deny list in <root>/.claude/settings.json. Action "on"
// or "enable" blocks them, "off" or "disable" unblocks them; anything
// else reports the current state without writing. Unrelated settings
// keys are preserved.
func ToggleBuiltinTools(root, action string) (ToggleResult, error) {
	settingsPath := filepath.Join(root, ".claude", "settings.json")

	settings := map[string]any{}
	if data, err := os.ReadFile(settingsPath); err == nil {
		if err := json.Unmarshal(data, &settings); err != nil {
			return ToggleResult{}, errors.Wrapf(err, "failed to parse %s", settingsPath)
		}
	}

	deny := denyList(settings)
	blocked := containsAll(deny, builtinTools)

	var message string
	write := true
	switch action {
	case "on", "enable":
		for _, tool := range builtinTools {
			if !slices.Contains(deny, tool) {
				deny = append(deny, tool)
			}
		}
		message = "Built-in tools disabled"
		blocked = true
	case "off", "disable":
		var kept []string
		for _, entry := range deny {
			if !slices.Contains(builtinTools, entry) {
				kept = append(kept, entry)
			}
		}
		deny = kept
		message = "Built-in tools enabled"
		blocked = false
	default:
		write = false
		if blocked {
			message = "Built-in tools currently disabled"
		} else {
			message = "Built-in tools currently enabled"
		}
	}

	if write {
		setDenyList(settings, deny)
		if err := os.MkdirAll(filepath.Dir(settingsPath), 0o755); err != nil {
			return ToggleResult{}, errors.Wrap(err, "failed to create settings directory")
		}
		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return ToggleResult{}, errors.Wrap(err, "failed to encode settings")
		}
		if err := os.WriteFile(settingsPath, append(data, '\n'), 0o644); err != nil {
			return ToggleResult{}, errors.Wrapf(err, "failed to write %s", settingsPath)
		}
	}

	if deny == nil {
		deny = []string{}
	}
	return ToggleResult{
		Blocked:  blocked,
		DenyList: deny,
		File:     settingsPath,
		Message:  message,
	}, nil
}

func denyList(settings map[string]any) []string {
	permissions, _ := settings["permissions"].(map[string]any)
	raw, _ := permissions["deny"].([]any)
	var deny []string
	for _, entry := range raw {
		if s, ok := entry.(string); ok {
			deny = append(deny, s)
		}
	}
	return deny
}

func setDenyList(settings map[string]any, deny []string) {
	permissions, ok := settings["permissions"].(map[string]any)
	if !ok {
		permissions = map[string]any{}
		settings["permissions"] = permissions
	}
	entries := make([]any, 0, len(deny))
	for _, tool := range deny {
		entries = append(entries, tool)
	}
	permissions["deny"] = entries
}

func containsAll(list, wanted []string) bool {
	for _, tool := range wanted {
		if !slices.Contains(list, tool) {
			return false
		}
	}
	return true
}
