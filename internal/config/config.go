// Package config assembles the runtime configuration once at process start.
// Values come from the yaml config file, overlaid by environment variables,
// then defaults. Components never read the environment themselves; they get
// an explicit Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kesslerio/local-whisper-openclaw-skill/internal/lock"
)

// Environment variables recognized by FromEnv.
const (
	EnvModel    = "WHISPER_MODEL"
	EnvLanguage = "WHISPER_LANGUAGE"
	EnvBinary   = "WHISPER_BIN"
)

// Config holds all application configuration.
type Config struct {
	DefaultModel    string `yaml:"default_model"`
	DefaultLanguage string `yaml:"default_language"`
	BinaryPath      string `yaml:"binary_path"`
	OutputDir       string `yaml:"output_dir"`
	LockPath        string `yaml:"lock_path"`
	LogLevel        string `yaml:"log_level"`
	Notify          bool   `yaml:"notify"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		DefaultLanguage: "auto",
		LockPath:        lock.DefaultPath,
		LogLevel:        "info",
		Notify:          true,
	}
}

// Load reads configuration from ~/.config/local-whisper/config.yaml. A missing
// file yields the defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), nil
	}
	return LoadFrom(filepath.Join(home, ".config", "local-whisper", "config.yaml"))
}

// LoadFrom reads configuration from an explicit path. Fields absent from the
// file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return cfg, nil
}

// FromEnv overlays environment variable overrides onto the config. This is the
// only place the process environment is consulted.
func (c *Config) FromEnv() {
	if v := os.Getenv(EnvModel); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv(EnvLanguage); v != "" {
		c.DefaultLanguage = v
	}
	if v := os.Getenv(EnvBinary); v != "" {
		c.BinaryPath = v
	}
}

// ExpandPaths replaces a leading ~ with the user's home directory in all path
// fields.
func (c *Config) ExpandPaths() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}

	c.BinaryPath = expandPath(c.BinaryPath, home)
	c.OutputDir = expandPath(c.OutputDir, home)
	c.LockPath = expandPath(c.LockPath, home)
}

func expandPath(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
