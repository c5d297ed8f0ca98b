package marketplace

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const legacyMarker = "AUTO-GENERATED: DO NOT EDIT\n" +
	"This directory is auto-synced from /skills\n" +
	"Edit files in /skills instead.\n"

// Sync mirrors skills/ into the legacy .claude/skills directory,
// replacing it wholesale and dropping a marker file so nobody edits the
// copies. Returns the names of synced skills.
func Sync(root string) ([]string, error) {
	skillsDir := filepath.Join(root, SkillsDir)
	if _, err := os.Stat(skillsDir); err != nil {
		return nil, errors.Errorf("%s does not exist", SkillsDir)
	}

	legacyDir := filepath.Join(root, filepath.FromSlash(LegacyDir))
	if err := os.RemoveAll(legacyDir); err != nil {
		return nil, errors.Wrap(err, "failed to clear legacy skills directory")
	}
	if err := os.MkdirAll(legacyDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create legacy skills directory")
	}
	if err := os.WriteFile(filepath.Join(legacyDir, "README.txt"), []byte(legacyMarker), 0o644); err != nil {
		return nil, errors.Wrap(err, "failed to write marker file")
	}

	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skills directory")
	}

	var synced []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		src := filepath.Join(skillsDir, entry.Name())
		dst := filepath.Join(legacyDir, entry.Name())
		if err := os.CopyFS(dst, os.DirFS(src)); err != nil {
			return nil, errors.Wrapf(err, "failed to sync skill %q", entry.Name())
		}
		synced = append(synced, entry.Name())
	}
	return synced, nil
}
