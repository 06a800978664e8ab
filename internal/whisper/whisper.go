// Package whisper locates and invokes the external whisper transcription
// binary and recovers the text artifact it writes.
//
// The binary is a black box: this package never touches audio samples or model
// weights. There is no timeout on the transcription call itself; a hung binary
// hangs the caller until the passed context is cancelled, and by default the
// context is unbounded. If the orchestrating process dies mid-run the child's
// fate is left to the OS; no process-group cleanup is attempted.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kesslerio/local-whisper-openclaw-skill/internal/model"
)

var (
	// ErrBinaryNotFound means no whisper binary could be resolved.
	ErrBinaryNotFound = errors.New("whisper binary not found")

	// ErrArtifactNotFound means the binary exited successfully but the
	// expected transcript file is missing. Distinct from a non-zero exit.
	ErrArtifactNotFound = errors.New("transcript file not found after transcription")

	// ErrUnsupportedFormat means the input extension is outside SupportedFormats.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// RunError reports a whisper invocation that failed to spawn or exited
// non-zero.
type RunError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("whisper transcription failed (exit=%d)", e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + lastLine(s)
	}
	return msg
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// Request describes one transcription invocation.
type Request struct {
	Input     string
	Model     model.Model
	Language  string
	OutputDir string
}

// Result is the outcome of one successful invocation.
type Result struct {
	Text         string
	ArtifactPath string
	Model        model.Model
	Language     string
}

// Transcriber invokes the whisper binary at a resolved path.
type Transcriber struct {
	binary string
	runner CommandRunner

	stat     func(string) (os.FileInfo, error)
	readFile func(string) ([]byte, error)
	mkdirAll func(string, os.FileMode) error

	log *logrus.Entry
}

// NewTranscriber builds a transcriber for the binary at path. An empty path is
// accepted here and rejected at Transcribe time with ErrBinaryNotFound.
func NewTranscriber(binary string) *Transcriber {
	return &Transcriber{
		binary:   binary,
		runner:   &ExecRunner{},
		stat:     os.Stat,
		readFile: os.ReadFile,
		mkdirAll: os.MkdirAll,
		log:      logrus.WithField("component", "whisper"),
	}
}

// Transcribe runs the binary synchronously and reads back the plain-text
// artifact. The language flag is omitted entirely for the "auto" sentinel so
// the binary's own auto-detection kicks in. All output formats are requested;
// auxiliary artifacts (srt, vtt, json, tsv) are left in place.
func (t *Transcriber) Transcribe(ctx context.Context, req Request) (Result, error) {
	if t.binary == "" {
		return Result{}, ErrBinaryNotFound
	}

	if err := t.mkdirAll(req.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("cannot create output directory %s: %w", req.OutputDir, err)
	}

	args := buildArgs(req)
	t.log.WithFields(logrus.Fields{
		"binary": t.binary,
		"args":   args,
	}).Debug("invoking whisper")

	res, err := t.runner.Run(ctx, t.binary, args...)
	if err != nil {
		return Result{}, &RunError{
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
			Err:      err,
		}
	}

	artifact, err := t.findArtifact(req)
	if err != nil {
		return Result{}, err
	}

	content, err := t.readFile(artifact)
	if err != nil {
		return Result{}, fmt.Errorf("cannot read transcript %s: %w", artifact, err)
	}

	return Result{
		Text:         strings.TrimSpace(string(content)),
		ArtifactPath: artifact,
		Model:        req.Model,
		Language:     req.Language,
	}, nil
}

// findArtifact derives the transcript filename from the input's base name and
// checks the requested output directory first, then the input's own directory.
// Some whisper builds ignore --output_dir and drop files next to the input.
func (t *Transcriber) findArtifact(req Request) (string, error) {
	name := transcriptName(req.Input)

	primary := filepath.Join(req.OutputDir, name)
	if _, err := t.stat(primary); err == nil {
		return primary, nil
	}

	fallback := filepath.Join(filepath.Dir(req.Input), name)
	if _, err := t.stat(fallback); err == nil {
		t.log.WithField("path", fallback).Warn("transcript found next to input, not in output directory")
		return fallback, nil
	}

	return "", fmt.Errorf("%w: expected %s or %s", ErrArtifactNotFound, primary, fallback)
}

// buildArgs constructs the whisper CLI invocation for req.
func buildArgs(req Request) []string {
	args := []string{
		req.Input,
		"--model", string(req.Model),
		"--output_format", "all",
		"--output_dir", req.OutputDir,
	}

	if lang := strings.TrimSpace(req.Language); lang != "" && !strings.EqualFold(lang, "auto") {
		args = append(args, "--language", lang)
	}

	return args
}

// transcriptName replaces the input's extension with .txt.
func transcriptName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".txt"
}

// NewTranscriberForTests builds a transcriber with injectable dependencies.
func NewTranscriberForTests(
	binary string,
	runner CommandRunner,
	stat func(string) (os.FileInfo, error),
	readFile func(string) ([]byte, error),
	mkdirAll func(string, os.FileMode) error,
) *Transcriber {
	return &Transcriber{
		binary:   binary,
		runner:   runner,
		stat:     stat,
		readFile: readFile,
		mkdirAll: mkdirAll,
		log:      logrus.WithField("component", "whisper"),
	}
}
