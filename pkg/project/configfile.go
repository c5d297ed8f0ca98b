package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ReadConfig parses a JSON or YAML configuration file into a map. The
// format is taken from the extension unless given explicitly.
func ReadConfig(path, format string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}

	var config map[string]any
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
		}
	default:
		return nil, errors.Errorf("unsupported format %q, use json or yaml", format)
	}
	if config == nil {
		config = map[string]any{}
	}
	return config, nil
}

// SetConfig updates one dot-notation key in a JSON or YAML file and
// writes it back in the same format. The value is parsed as JSON when
// possible, so numbers, booleans and objects round-trip; anything else
// is stored as a string.
func SetConfig(path, key, value string) (any, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	config, err := ReadConfig(path, format)
	if err != nil {
		return nil, err
	}

	parsed := parseValue(value)
	if err := setNested(config, key, parsed); err != nil {
		return nil, err
	}

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(config, "", "  ")
	default:
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode config")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", path)
	}
	return parsed, nil
}

func parseValue(value string) any {
	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err == nil {
		return parsed
	}
	return value
}

func setNested(config map[string]any, key string, value any) error {
	parts := strings.Split(key, ".")
	current := config
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			child := map[string]any{}
			current[part] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return errors.Errorf("cannot traverse %s: %s is not a map", key, part)
		}
		current = child
	}
	current[parts[len(parts)-1]] = value
	return nil
}
