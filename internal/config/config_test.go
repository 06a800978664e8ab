package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesslerio/local-whisper-openclaw-skill/internal/lock"
)

func TestLoadFromMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.DefaultLanguage)
	assert.Equal(t, lock.DefaultPath, cfg.LockPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Notify)
	assert.Empty(t, cfg.DefaultModel)
}

func TestLoadFromParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
default_model: small
default_language: es
binary_path: /opt/whisper/bin/whisper
log_level: debug
notify: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "small", cfg.DefaultModel)
	assert.Equal(t, "es", cfg.DefaultLanguage)
	assert.Equal(t, "/opt/whisper/bin/whisper", cfg.BinaryPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Notify)
	// Untouched fields keep their defaults.
	assert.Equal(t, lock.DefaultPath, cfg.LockPath)
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_model: [broken"), 0o644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestFromEnvOverlays(t *testing.T) {
	t.Setenv(EnvModel, "tiny")
	t.Setenv(EnvLanguage, "de")
	t.Setenv(EnvBinary, "/custom/whisper")

	cfg := Default()
	cfg.FromEnv()

	assert.Equal(t, "tiny", cfg.DefaultModel)
	assert.Equal(t, "de", cfg.DefaultLanguage)
	assert.Equal(t, "/custom/whisper", cfg.BinaryPath)
}

func TestFromEnvEmptyVarsLeaveConfig(t *testing.T) {
	t.Setenv(EnvModel, "")

	cfg := Default()
	cfg.DefaultModel = "base"
	cfg.FromEnv()

	assert.Equal(t, "base", cfg.DefaultModel)
}

func TestExpandPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	cfg.BinaryPath = "~/bin/whisper"
	cfg.OutputDir = "~/transcripts"
	cfg.ExpandPaths()

	assert.Equal(t, filepath.Join(home, "bin", "whisper"), cfg.BinaryPath)
	assert.Equal(t, filepath.Join(home, "transcripts"), cfg.OutputDir)
	assert.Equal(t, lock.DefaultPath, cfg.LockPath)
}
