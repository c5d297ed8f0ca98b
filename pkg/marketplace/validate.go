package marketplace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Validate checks the skills tree and the manifest against each other
// and returns a list of human-readable issues. An empty list means the
// marketplace is consistent.
func Validate(root string) ([]string, error) {
	var issues []string

	skillsDir := filepath.Join(root, SkillsDir)
	entries, err := os.ReadDir(skillsDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to read skills directory")
	}

	seen := map[string]string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirName := entry.Name()
		if !ValidateName(dirName) {
			issues = append(issues, fmt.Sprintf("skills/%s: invalid skill name", dirName))
		}

		skill, err := loadSkill(filepath.Join(skillsDir, dirName, SkillFileName))
		if err != nil {
			issues = append(issues, fmt.Sprintf("skills/%s: %v", dirName, err))
			continue
		}
		if skill.Name != dirName {
			issues = append(issues, fmt.Sprintf("skills/%s: frontmatter name %q does not match directory", dirName, skill.Name))
		}
		if prev, dup := seen[skill.Name]; dup {
			issues = append(issues, fmt.Sprintf("skills/%s: duplicate skill name %q (also in skills/%s)", dirName, skill.Name, prev))
		} else {
			seen[skill.Name] = dirName
		}
	}

	manifest, err := LoadManifest(root)
	if err != nil {
		return nil, err
	}
	for _, plugin := range manifest.Plugins {
		if !ValidateName(plugin.Name) {
			issues = append(issues, fmt.Sprintf("manifest: invalid plugin name %q", plugin.Name))
		}
		source := strings.TrimPrefix(plugin.Source, "./")
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(source)))
		if err != nil || !info.IsDir() {
			issues = append(issues, fmt.Sprintf("manifest: plugin %q points at missing directory %s", plugin.Name, plugin.Source))
		}
	}

	return issues, nil
}
