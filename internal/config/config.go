package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultConcurrency bounds parallel git invocations per command.
const DefaultConcurrency = 4

// MaxConcurrency is the hard cap regardless of configuration.
const MaxConcurrency = 8

// CloneConfig holds clone-related configuration
type CloneConfig struct {
	Shallow bool `toml:"shallow"` // clone with --depth 1
}

// Config holds the viewyard configuration
type Config struct {
	ViewsRoot      string      `toml:"views_root"`      // where view directories are created
	DefaultViewset string      `toml:"default_viewset"` // viewset used when --viewset is omitted
	StageUntracked bool        `toml:"stage_untracked"` // include untracked files in commit-all
	Concurrency    int         `toml:"concurrency"`     // parallel git invocations (1-8)
	Clone          CloneConfig `toml:"clone"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		ViewsRoot:   "",
		Concurrency: DefaultConcurrency,
	}
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil // Empty is allowed (means not configured)
	}
	// Allow ~ paths
	if len(path) >= 1 && path[0] == '~' {
		return nil
	}
	// Must be absolute
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Dir returns the viewyard configuration directory
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "viewyard"), nil
}

// configPath returns the path to the config file
func configPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads config from ~/.config/viewyard/config.toml
// Returns Default() if file doesn't exist (no error)
// Returns error only if file exists but is invalid
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate views_root (must be absolute or start with ~)
	if err := ValidatePath(cfg.ViewsRoot, "views_root"); err != nil {
		return Default(), err
	}

	// Expand ~ in views_root (shell doesn't expand in config files)
	if cfg.ViewsRoot != "" {
		expanded, err := expandPath(cfg.ViewsRoot)
		if err != nil {
			return Default(), fmt.Errorf("expand views_root: %w", err)
		}
		cfg.ViewsRoot = expanded
	}

	if cfg.Concurrency < 1 || cfg.Concurrency > MaxConcurrency {
		return Default(), fmt.Errorf("invalid concurrency %d: must be between 1 and %d", cfg.Concurrency, MaxConcurrency)
	}

	return cfg, nil
}

const defaultConfig = `# viewyard configuration

# Base directory for new views
# Must be an absolute path or start with ~ (no relative paths like "." or "..")
# Examples: "/Users/you/views" or "~/views"
# views_root = "~/views"

# Viewset used when --viewset is not given
# default_viewset = "work"

# Include untracked files when running commit-all
# Equivalent to always passing --include-untracked
# stage_untracked = false

# Parallel git invocations per command (1-8)
# concurrency = 4

# Clone settings
# [clone]
# shallow = true   # clone with --depth 1
`

// Init creates a default config file at ~/.config/viewyard/config.toml
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}

	// Check if file already exists (skip if force)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	// Create directory
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	// Write default config
	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", err
	}

	return path, nil
}
