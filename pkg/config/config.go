// Package config implements configuration resolution shared by all
// skills. Values resolve with a fixed precedence: explicit flag >
// environment variable > .env file (merged into the environment at
// startup) > persisted settings file > default.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Resolve returns the first non-empty value among the explicit flag
// value, the environment variable and the fallback default.
func Resolve(flagValue, envKey, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

// BoolFromEnv interprets an environment variable as a boolean flag.
// "true", "1" and "yes" (case-insensitive) enable it.
func BoolFromEnv(envKey string) bool {
	switch strings.ToLower(os.Getenv(envKey)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// MaskKey redacts an API key for display, keeping the first and last
// four characters.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// Dir returns the per-tool configuration directory, creating it if
// necessary. It honors XDG_CONFIG_HOME and falls back to ~/.config.
func Dir(tool string) (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to get user home directory")
		}
		base = filepath.Join(home, ".config")
	}

	dir := filepath.Join(base, tool)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create config directory %s", dir)
	}
	return dir, nil
}

// Settings is a small JSON key-value file under a per-tool configuration
// directory. Records are written once and read back verbatim.
type Settings struct {
	path string
}

// NewSettings returns the settings file <config dir>/<tool>/config.json.
func NewSettings(tool string) (*Settings, error) {
	dir, err := Dir(tool)
	if err != nil {
		return nil, err
	}
	return &Settings{path: filepath.Join(dir, "config.json")}, nil
}

// SettingsAt returns a settings file at an explicit path, for tests and
// non-standard locations.
func SettingsAt(path string) *Settings {
	return &Settings{path: path}
}

// Path returns the location of the settings file.
func (s *Settings) Path() string {
	return s.path
}

// Load reads the settings file. A missing or corrupt file yields an
// empty map so a bad settings file never breaks a skill invocation.
func (s *Settings) Load() map[string]any {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]any{}
	}

	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return map[string]any{}
	}
	return values
}

// Save writes the settings atomically via a temp file and rename.
func (s *Settings) Save(values map[string]any) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal settings")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write settings file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "failed to replace settings file")
	}
	return nil
}

// GetString returns a string value from the settings file, or the
// fallback when absent.
func (s *Settings) GetString(key, fallback string) string {
	if v, ok := s.Load()[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// SetString persists a string value and returns the previous one (or
// the fallback when the key was unset).
func (s *Settings) SetString(key, value, fallback string) (string, error) {
	values := s.Load()
	previous := fallback
	if v, ok := values[key].(string); ok && v != "" {
		previous = v
	}
	values[key] = value
	if err := s.Save(values); err != nil {
		return "", err
	}
	return previous, nil
}
