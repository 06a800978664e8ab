package whisper

import (
	"os"
	"os/exec"
	"path/filepath"
)

// binaryName is the command name of the external transcription tool.
const binaryName = "whisper"

// candidateDirs are conventional install locations checked after PATH lookup
// fails, in order.
var candidateDirs = []string{
	"~/.local/bin",
	"/usr/local/bin",
	"/opt/homebrew/bin",
	"/usr/bin",
}

// Locator resolves the filesystem path of the whisper binary. Resolution order:
// an explicit override (trusted verbatim, no existence check), then PATH, then
// the conventional install locations. Every call re-resolves; nothing is cached.
type Locator struct {
	override string

	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
	homeDir  func() (string, error)
}

// NewLocator builds a locator with real OS dependencies. override usually comes
// from the WHISPER_BIN environment variable, already lifted into config.
func NewLocator(override string) *Locator {
	return &Locator{
		override: override,
		lookPath: exec.LookPath,
		stat:     os.Stat,
		homeDir:  os.UserHomeDir,
	}
}

// Locate returns the best-effort path to the whisper binary, or "" when none
// is found.
func (l *Locator) Locate() string {
	if l.override != "" {
		return l.override
	}

	if path, err := l.lookPath(binaryName); err == nil {
		return path
	}

	for _, dir := range candidateDirs {
		if dir[0] == '~' {
			home, err := l.homeDir()
			if err != nil {
				continue
			}
			dir = filepath.Join(home, dir[1:])
		}
		candidate := filepath.Join(dir, binaryName)
		if _, err := l.stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// NewLocatorForTests builds a locator with injectable dependencies.
func NewLocatorForTests(
	override string,
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	homeDir func() (string, error),
) *Locator {
	return &Locator{
		override: override,
		lookPath: lookPath,
		stat:     stat,
		homeDir:  homeDir,
	}
}
