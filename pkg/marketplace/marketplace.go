// Package marketplace manages the skills/ tree and the plugin manifest
// at .claude-plugin/marketplace.json: scaffolding new skills, listing
// and validating them, and mirroring them into the legacy directory.
package marketplace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	// SkillsDir is the source of truth for skill definitions.
	SkillsDir = "skills"
	// ManifestPath is the plugin manifest consumed by marketplace clients.
	ManifestPath = ".claude-plugin/marketplace.json"
	// LegacyDir is the mirror kept for clients that read the old layout.
	LegacyDir = ".claude/skills"
)

const skillTemplate = `---
name: %s
description: |
  %s
---

# %s

## Usage

[Describe how to use this skill]

## Examples

- Example 1
- Example 2
`

// Plugin is one entry in the marketplace manifest.
type Plugin struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Source      string   `json:"source"`
	Strict      bool     `json:"strict"`
	Skills      []string `json:"skills"`
}

// Manifest is the marketplace.json document.
type Manifest struct {
	Name    string         `json:"name,omitempty"`
	Owner   map[string]any `json:"owner,omitempty"`
	Plugins []Plugin       `json:"plugins"`
}

var nameRe = regexp.MustCompile(`^[a-z]$|^[a-z][a-z0-9-]{0,62}[a-z0-9]$`)

// ValidateName reports whether a skill name is acceptable: lowercase
// letters, digits and hyphens, 1-64 chars, starting with a letter,
// ending with a letter or digit, no consecutive hyphens.
func ValidateName(name string) bool {
	return nameRe.MatchString(name) && !strings.Contains(name, "--")
}

// LoadManifest reads the manifest, returning an empty one when the file
// does not exist yet.
func LoadManifest(root string) (*Manifest, error) {
	path := filepath.Join(root, filepath.FromSlash(ManifestPath))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{Plugins: []Plugin{}}, nil
		}
		return nil, errors.Wrap(err, "failed to read marketplace manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "failed to parse marketplace manifest")
	}
	if manifest.Plugins == nil {
		manifest.Plugins = []Plugin{}
	}
	return &manifest, nil
}

// SaveManifest writes the manifest back, creating .claude-plugin/ as
// needed.
func SaveManifest(root string, manifest *Manifest) error {
	path := filepath.Join(root, filepath.FromSlash(ManifestPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create manifest directory")
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode marketplace manifest")
	}
	return errors.Wrap(os.WriteFile(path, append(data, '\n'), 0o644), "failed to write marketplace manifest")
}

// CreateSkill scaffolds skills/<name>/SKILL.md and registers the plugin
// in the manifest. Registration is idempotent; an existing skill
// directory is an error.
func CreateSkill(root, name, description string) (string, error) {
	if !ValidateName(name) {
		return "", errors.Errorf("invalid skill name %q: lowercase, numbers, hyphens, 1-64 chars, no consecutive hyphens", name)
	}
	if description == "" {
		description = "A new skill"
	}

	skillDir := filepath.Join(root, SkillsDir, name)
	if _, err := os.Stat(skillDir); err == nil {
		return "", errors.Errorf("skill %q already exists", name)
	}
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create skill directory")
	}

	content := fmt.Sprintf(skillTemplate, name, description, titleFor(name))
	if err := os.WriteFile(filepath.Join(skillDir, SkillFileName), []byte(content), 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write SKILL.md")
	}

	manifest, err := LoadManifest(root)
	if err != nil {
		return "", err
	}
	registered := false
	for _, plugin := range manifest.Plugins {
		if plugin.Name == name {
			registered = true
			break
		}
	}
	if !registered {
		manifest.Plugins = append(manifest.Plugins, Plugin{
			Name:        name,
			Description: description,
			Source:      "./" + SkillsDir + "/" + name,
			Strict:      false,
			Skills:      []string{"./"},
		})
	}
	if err := SaveManifest(root, manifest); err != nil {
		return "", err
	}
	return skillDir, nil
}

// titleFor turns "web-search" into "Web Search" for the scaffold
// heading.
func titleFor(name string) string {
	words := strings.Split(name, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
