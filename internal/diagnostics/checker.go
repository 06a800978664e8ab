// Package diagnostics probes the external tools a transcription run needs.
// Probes report availability as flat status flags; they never raise. Results
// are produced fresh on every check.
package diagnostics

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kesslerio/local-whisper-openclaw-skill/internal/whisper"
)

// Status records the availability of each required external dependency.
type Status struct {
	FFmpeg      bool
	WhisperPath string
	Python      bool
}

// WhisperPresent reports whether a transcription binary was resolved and
// answered its probe.
func (s Status) WhisperPresent() bool {
	return s.WhisperPath != ""
}

// Missing lists the names of absent required tools.
func (s Status) Missing() []string {
	var out []string
	if !s.FFmpeg {
		out = append(out, "ffmpeg")
	}
	if !s.WhisperPresent() {
		out = append(out, "whisper")
	}
	if !s.Python {
		out = append(out, "python3")
	}
	return out
}

// hints maps a tool name to installation guidance.
var hints = map[string]string{
	"ffmpeg":  "install it with your package manager (e.g. apt install ffmpeg / brew install ffmpeg)",
	"whisper": "install it with: pip install -U openai-whisper (or set WHISPER_BIN to its path)",
	"python3": "install Python 3 with your package manager",
}

// Hint returns installation guidance for a missing tool.
func Hint(tool string) string {
	return hints[tool]
}

// Report renders a human-readable check result.
func Report(s Status) string {
	var b strings.Builder
	line := func(ok bool, name, detail string) {
		mark := "ok"
		if !ok {
			mark = "MISSING"
		}
		fmt.Fprintf(&b, "  %-8s %-8s %s\n", name, mark, detail)
	}

	b.WriteString("Dependency check:\n")
	line(s.FFmpeg, "ffmpeg", "")
	line(s.WhisperPresent(), "whisper", s.WhisperPath)
	line(s.Python, "python3", "")

	for _, tool := range s.Missing() {
		fmt.Fprintf(&b, "  hint: %s: %s\n", tool, Hint(tool))
	}
	return b.String()
}

// Checker runs the dependency probes.
type Checker struct {
	locate func() string
	runner whisper.CommandRunner
	log    *logrus.Entry
}

// NewChecker builds a checker that resolves the whisper binary through the
// given locator.
func NewChecker(locator *whisper.Locator) *Checker {
	return &Checker{
		locate: locator.Locate,
		runner: &whisper.ExecRunner{},
		log:    logrus.WithField("component", "diagnostics"),
	}
}

// Check probes each dependency with a short-lived command. A spawn failure or
// non-zero exit means "absent"; nothing propagates as an error.
func (c *Checker) Check(ctx context.Context) Status {
	status := Status{
		FFmpeg: c.probe(ctx, "ffmpeg", "-version"),
		Python: c.probe(ctx, "python3", "--version"),
	}

	if path := c.locate(); path != "" && c.probe(ctx, path, "--help") {
		status.WhisperPath = path
	}

	c.log.WithFields(logrus.Fields{
		"ffmpeg":  status.FFmpeg,
		"whisper": status.WhisperPath,
		"python3": status.Python,
	}).Debug("dependency probe complete")

	return status
}

func (c *Checker) probe(ctx context.Context, name string, args ...string) bool {
	_, err := c.runner.Run(ctx, name, args...)
	return err == nil
}

// NewCheckerForTests builds a checker with injectable dependencies.
func NewCheckerForTests(locate func() string, runner whisper.CommandRunner) *Checker {
	return &Checker{
		locate: locate,
		runner: runner,
		log:    logrus.WithField("component", "diagnostics"),
	}
}
