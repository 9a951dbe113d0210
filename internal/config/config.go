// Package config loads tblx settings from an embedded default merged with an
// optional user file.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tblx/pkg/settings"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// Config is the merged tblx configuration.
type Config struct {
	Output OutputConfig `yaml:"output"`
	Table  TableConfig  `yaml:"table"`
	Theme  ThemeConfig  `yaml:"theme"`
}

// OutputConfig holds defaults for output flags.
type OutputConfig struct {
	Format  string `yaml:"format"`
	Width   int    `yaml:"width"`
	NoColor bool   `yaml:"noColor"`
}

// TableConfig controls the columnar renderer.
type TableConfig struct {
	MaxColumnWidth int    `yaml:"maxColumnWidth"`
	Separator      string `yaml:"separator"`
}

// ThemeConfig holds lipgloss colors for headers and the interactive table.
type ThemeConfig struct {
	Header    string `yaml:"header"`
	Sorted    string `yaml:"sorted"`
	Separator string `yaml:"separator"`
	Focus     string `yaml:"focus"`
}

// DefaultYAML returns a copy of the embedded default config.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default decodes the embedded default config.
func Default() (Config, error) {
	var cfg Config
	if len(embeddedDefaultConfig) == 0 {
		return cfg, fmt.Errorf("embedded default config is empty")
	}
	if err := yaml.Unmarshal(embeddedDefaultConfig, &cfg); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	return cfg, nil
}

// Load returns the default config with the file at path merged over it.
// Fields absent from the file keep their defaults. An empty path yields the
// defaults.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if cfg.Table.MaxColumnWidth < 0 {
		return cfg, fmt.Errorf("config %s: table.maxColumnWidth must not be negative", path)
	}
	return cfg, nil
}

// ResolvePath returns explicit if set, otherwise
// $XDG_CONFIG_HOME/tblx/config.yaml or ~/.config/tblx/config.yaml when that
// file exists, otherwise "".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}
