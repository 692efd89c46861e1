package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for jsvs. Nil fields are
// unset and fall through to the next source.
type FileConfig struct {
	Include         *string `yaml:"include"`
	Exclude         *string `yaml:"exclude"`
	MaxFileBytes    *int64  `yaml:"max_file_bytes"`
	Threads         *int    `yaml:"threads"`
	DefaultExcludes *bool   `yaml:"default_excludes"`

	// Decode recursion limits
	MaxDepth   *int    `yaml:"max_depth"`
	MaxBytes   *int64  `yaml:"max_bytes"`
	TimeBudget *string `yaml:"time_budget"`

	FailOn  *string `yaml:"fail_on"`
	NoColor *bool   `yaml:"no_color"`
	// Format is one of text, table, json or sarif.
	Format *string `yaml:"format"`
}

// ErrNoConfig is returned when no config file exists at the searched locations.
var ErrNoConfig = errors.New("no config file")

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a project config file in the given root.
// It supports .jsvs.yml/.yaml and jsvs.yml/.yaml.
func LoadLocal(root string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".jsvs.yml", ".jsvs.yaml", "jsvs.yml", "jsvs.yaml"} {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, ErrNoConfig
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, ErrNoConfig
	}
	p := filepath.Join(base, "jsvs", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, ErrNoConfig
}
