// Package config loads todos settings from a TOML file and the environment.
//
// Priority, lowest first: defaults, config file, TODOS_* environment
// variables. Root flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	AppName        = "todos"
	ConfigFileName = "config.toml"
	DBFileName     = "todos.db"
	DefaultLevel   = "warn"
)

// Config holds every user-tunable setting.
type Config struct {
	DBPath        string `toml:"db_path"`
	Editor        string `toml:"editor"` // empty: $VISUAL, $EDITOR, nvim
	Pager         string `toml:"pager"`  // empty: $PAGER, less; "builtin" for the TUI pager
	ScratchDir    string `toml:"scratch_dir"`
	UniqueScratch bool   `toml:"unique_scratch"`
	LogLevel      string `toml:"log_level"`
	Color         *bool  `toml:"color"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DBPath:     defaultDBPath(),
		ScratchDir: os.TempDir(),
		LogLevel:   DefaultLevel,
	}
}

// ColorEnabled reports whether styled output is wanted.
func (c *Config) ColorEnabled() bool {
	return c.Color == nil || *c.Color
}

func defaultDBPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, AppName, DBFileName)
	}
	return filepath.Join(".", DBFileName)
}

// DefaultPath returns the config file location: $XDG_CONFIG_HOME/todos or
// the OS user config dir.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, ConfigFileName)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, ConfigFileName)
}

// Load reads the file at path over the defaults and applies env overrides.
// A missing file is not an error; an empty path uses DefaultPath.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(expandPath(path), cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	loadFromEnv(cfg)
	cfg.finalize()
	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODOS_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TODOS_EDITOR"); v != "" {
		cfg.Editor = v
	}
	if v := os.Getenv("TODOS_PAGER"); v != "" {
		cfg.Pager = v
	}
	if v := os.Getenv("TODOS_SCRATCH_DIR"); v != "" {
		cfg.ScratchDir = v
	}
	if v := os.Getenv("TODOS_LOG"); v != "" {
		cfg.LogLevel = v
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		off := false
		cfg.Color = &off
	}
}

func (c *Config) finalize() {
	c.DBPath = expandPath(c.DBPath)
	c.ScratchDir = expandPath(c.ScratchDir)
	if c.ScratchDir == "" {
		c.ScratchDir = os.TempDir()
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = DefaultLevel
	}
}

// expandPath expands ~/ and environment variables.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, strings.TrimPrefix(expanded[1:], "/"))
	}
	return expanded
}
