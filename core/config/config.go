package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"rat/core/apperrors"
)

// DefaultBranch is the branch HEAD points at in a freshly initialized nest
// when the config does not override it.
const DefaultBranch = "main"

// Config holds per-nest settings.
type Config struct {
	DefaultBranch string `json:"default_branch,omitempty"`
	Editor        string `json:"editor,omitempty"`
	Color         string `json:"color,omitempty"` // "auto", "always" or "never"
}

// BranchOrDefault returns the configured default branch name.
func (c *Config) BranchOrDefault() string {
	if c.DefaultBranch == "" {
		return DefaultBranch
	}
	return c.DefaultBranch
}

// ColorOrDefault returns the configured color mode.
func (c *Config) ColorOrDefault() string {
	if c.Color == "" {
		return "auto"
	}
	return c.Color
}

// Manager reads and writes the nest's config file.
type Manager struct {
	configPath string
}

// NewManager creates a config manager for the given nest directory.
func NewManager(nestDir string) *Manager {
	return &Manager{
		configPath: filepath.Join(nestDir, "config.json"),
	}
}

// Load reads the config file. A missing file is not an error; it yields a
// zero Config whose accessors return the defaults.
func (m *Manager) Load() (*Config, error) {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, apperrors.NewStorageError("read config", m.configPath, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.NewStorageError("parse config", m.configPath, err)
	}

	return &cfg, nil
}

// Save writes the config file.
func (m *Manager) Save(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("encode config", m.configPath, err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return apperrors.NewStorageError("write config", m.configPath, err)
	}
	return nil
}
