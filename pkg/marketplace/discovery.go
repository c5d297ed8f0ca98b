package marketplace

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// SkillFileName is the definition file each skill directory carries.
const SkillFileName = "SKILL.md"

// Skill is one discovered skill.
type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Dir         string `json:"dir"`
}

// ListSkills discovers skills under <root>/skills, sorted by directory
// name. Directories without a parseable SKILL.md are skipped.
func ListSkills(root string) ([]Skill, error) {
	skillsDir := filepath.Join(root, SkillsDir)
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Skill{}, nil
		}
		return nil, errors.Wrap(err, "failed to read skills directory")
	}

	var skills []Skill
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skill, err := loadSkill(filepath.Join(skillsDir, entry.Name(), SkillFileName))
		if err != nil {
			continue
		}
		skill.Dir = filepath.ToSlash(filepath.Join(SkillsDir, entry.Name()))
		skills = append(skills, *skill)
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Dir < skills[j].Dir })
	return skills, nil
}

// loadSkill parses the YAML frontmatter of one SKILL.md.
func loadSkill(path string) (*Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)
	name = strings.TrimSpace(name)
	// Block scalar descriptions keep a trailing newline after parsing.
	description = strings.TrimSpace(description)
	if name == "" {
		return nil, errors.New("skill name is required in frontmatter")
	}
	if description == "" {
		return nil, errors.New("skill description is required in frontmatter")
	}

	return &Skill{Name: name, Description: description}, nil
}
