package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load builds the effective configuration: defaults, then the config file
// (the -config path or the first standard location), then CLI flags. The
// result is normalized and validated.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Textensions")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Textensions")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "textensions")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "textensions")
	}
}

// loadFromFile merges a YAML file over cfg. A file that lists effects
// replaces the default effects. Relative font and click paths that exist
// next to the file are rewritten to point there.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	cfg.resolveAssets(filepath.Dir(path))
	return nil
}

// resolveAssets anchors the asset paths of cfg at dir when the file is there.
// Anything else is left for the asset search path (working directory, then
// ConfigDir).
func (c *Config) resolveAssets(dir string) {
	for _, p := range []*string{&c.Text.FontFile, &c.Audio.ClickFile} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		candidate := filepath.Join(dir, *p)
		if _, err := os.Stat(candidate); err == nil {
			*p = candidate
		}
	}
}
