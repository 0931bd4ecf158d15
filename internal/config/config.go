// Package config loads the optional user configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the persisted user configuration.
type Config struct {
	Index IndexConfig `yaml:"index"`
	UI    UIConfig    `yaml:"ui"`
	Log   LogConfig   `yaml:"log"`
}

// IndexConfig configures discovery defaults; command-line flags
// override them.
type IndexConfig struct {
	// IncludeHidden walks dot-files and dot-directories.
	IncludeHidden bool `yaml:"include_hidden"`
	// FollowSymlinks resolves symlinked directories.
	FollowSymlinks bool `yaml:"follow_symlinks"`
	// RespectIgnoreFiles honors .gitignore and .ignore files.
	RespectIgnoreFiles bool `yaml:"respect_ignore_files"`
	// GlobalIgnores are directory names pruned everywhere.
	GlobalIgnores []string `yaml:"global_ignores"`
	// Extensions restricts results to the given extensions.
	Extensions []string `yaml:"extensions"`
	// Workers is the number of concurrent subtree walkers.
	Workers int `yaml:"workers"`
	// Watch keeps the index caught up with filesystem changes.
	Watch bool `yaml:"watch"`
}

// UIConfig configures presentation.
type UIConfig struct {
	// InitialMode is the module tab selected at startup.
	InitialMode string `yaml:"initial_mode"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Index: IndexConfig{
			RespectIgnoreFiles: true,
			Watch:              true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns the expected config file location: the FRZ_CONFIG
// environment variable when set, otherwise the user config directory.
// Empty when neither can be determined.
func DefaultPath() string {
	if path := os.Getenv("FRZ_CONFIG"); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "frz", "config.yaml")
}

// Load reads the config file at path. A missing file returns the
// defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
