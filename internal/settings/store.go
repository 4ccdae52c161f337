// Package settings persists user preferences that only the file pickers
// consult.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const appName = "localref"

// Settings are the persisted user preferences.
type Settings struct {
	// DefaultPath seeds the picker's starting directory. Empty means the
	// home directory.
	DefaultPath string `yaml:"default_path"`
}

// Store reads and writes Settings as YAML.
type Store struct {
	path string
}

// DefaultPath returns $XDG_CONFIG_HOME/localref/settings.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "settings.yaml")
}

// NewStore creates a store backed by path ("" selects DefaultPath).
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load reads the settings. A missing file yields zero Settings.
func (s *Store) Load() (Settings, error) {
	var out Settings
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("settings: read %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("settings: parse %s: %w", s.path, err)
	}
	return out, nil
}

// Save writes the settings, creating parent directories.
func (s *Store) Save(v Settings) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("settings: mkdir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, error) {
	v, err := s.Load()
	if err != nil {
		return "", err
	}
	switch key {
	case "default_path", "default-path":
		return v.DefaultPath, nil
	}
	return "", fmt.Errorf("settings: unknown key %q", key)
}

// Set updates one key and saves.
func (s *Store) Set(key, value string) error {
	v, err := s.Load()
	if err != nil {
		return err
	}
	switch key {
	case "default_path", "default-path":
		v.DefaultPath = value
	default:
		return fmt.Errorf("settings: unknown key %q", key)
	}
	return s.Save(v)
}
