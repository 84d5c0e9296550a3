// Package config holds the jukebox settings file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gopkg.in/yaml.v2"

	"github.com/icco/jukebox/internal/kind"
)

// FileName is the settings file inside the config directory.
const FileName = "config.yaml"

// Config is the main configuration structure
type Config struct {
	// Dir is where mappings and song state live. Empty means the directory
	// the config was loaded from.
	Dir          string `yaml:"dir,omitempty"`
	MappingsFile string `yaml:"mappingsFile"`
	StateFile    string `yaml:"stateFile"`
	// PickerDir is where the file picker opens. Empty means the home directory.
	PickerDir string `yaml:"pickerDir,omitempty"`
	Debug     bool   `yaml:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MappingsFile: "mappings.txt",
		StateFile:    "current.jukebox",
	}
}

// ConfigDir returns the default config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "jukebox"), nil
}

// Load reads the config from dir, or returns defaults if not found
func Load(dir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Dir = dir

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fault.Wrap(err, ftag.With(kind.IO), fmsg.With("reading config"))
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fault.Wrap(err, ftag.With(kind.Config), fmsg.With("parsing "+FileName))
	}
	if cfg.Dir == "" {
		cfg.Dir = dir
	}
	return cfg, nil
}

// Save writes the config into dir
func (c *Config) Save(dir string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fault.Wrap(err, ftag.With(kind.IO), fmsg.With("creating config directory"))
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fault.Wrap(err, ftag.With(kind.Config), fmsg.With("encoding config"))
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0600); err != nil {
		return fault.Wrap(err, ftag.With(kind.IO), fmsg.With("writing config"))
	}
	return nil
}

// MappingsPath is the full path of the mapping table.
func (c *Config) MappingsPath() string {
	return c.resolve(c.MappingsFile)
}

// StatePath is the full path of the persisted song state.
func (c *Config) StatePath() string {
	return c.resolve(c.StateFile)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Dir, name)
}
