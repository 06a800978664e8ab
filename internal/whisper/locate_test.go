package whisper

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("not found")

func lookPathMiss(string) (string, error) { return "", errNotFound }

func statMiss(string) (os.FileInfo, error) { return nil, os.ErrNotExist }

func homeDirOf(dir string) func() (string, error) {
	return func() (string, error) { return dir, nil }
}

func TestLocateOverrideWinsVerbatim(t *testing.T) {
	// The override is trusted without an existence check.
	l := NewLocatorForTests("/nonexistent/whisper", lookPathMiss, statMiss, homeDirOf("/home/u"))
	assert.Equal(t, "/nonexistent/whisper", l.Locate())
}

func TestLocatePathLookup(t *testing.T) {
	lookPath := func(name string) (string, error) {
		require.Equal(t, "whisper", name)
		return "/usr/bin/whisper", nil
	}
	l := NewLocatorForTests("", lookPath, statMiss, homeDirOf("/home/u"))
	assert.Equal(t, "/usr/bin/whisper", l.Locate())
}

func TestLocateFallsBackToCandidateDirs(t *testing.T) {
	home := t.TempDir()
	binDir := filepath.Join(home, ".local", "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	binary := filepath.Join(binDir, "whisper")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755))

	l := NewLocatorForTests("", lookPathMiss, os.Stat, homeDirOf(home))
	assert.Equal(t, binary, l.Locate())
}

func TestLocateCandidateOrder(t *testing.T) {
	stat := func(path string) (os.FileInfo, error) {
		if path == "/usr/local/bin/whisper" || path == "/usr/bin/whisper" {
			return nil, nil
		}
		return nil, os.ErrNotExist
	}
	l := NewLocatorForTests("", lookPathMiss, stat, homeDirOf("/home/u"))
	assert.Equal(t, "/usr/local/bin/whisper", l.Locate())
}

func TestLocateNothingFound(t *testing.T) {
	l := NewLocatorForTests("", lookPathMiss, statMiss, homeDirOf(t.TempDir()))
	assert.Equal(t, "", l.Locate())
}
