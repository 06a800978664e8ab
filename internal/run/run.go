// Package run orchestrates one transcription: input validation, the
// single-instance lock, dependency probing, model selection and the whisper
// invocation. One run per process; there is no retry logic anywhere.
package run

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/kesslerio/local-whisper-openclaw-skill/internal/config"
	"github.com/kesslerio/local-whisper-openclaw-skill/internal/diagnostics"
	"github.com/kesslerio/local-whisper-openclaw-skill/internal/lock"
	"github.com/kesslerio/local-whisper-openclaw-skill/internal/model"
	"github.com/kesslerio/local-whisper-openclaw-skill/internal/whisper"
	"github.com/kesslerio/local-whisper-openclaw-skill/pkg/notify"
)

// Options are the normalized per-invocation settings. If Model is set
// explicitly, the CLI layer has already forced SmartModel to false.
type Options struct {
	AudioPath  string
	Model      model.Model
	Language   string
	OutputDir  string
	SmartModel bool
	Force      bool
}

// invoker abstracts the whisper transcriber for testing.
type invoker interface {
	Transcribe(ctx context.Context, req whisper.Request) (whisper.Result, error)
}

// notifier abstracts desktop notifications; nil means disabled.
type notifier interface {
	Info(title, message string) error
	Error(title, message string) error
}

// Runner wires the collaborators for one transcription run.
type Runner struct {
	cfg      *config.Config
	lck      *lock.Lock
	checker  *diagnostics.Checker
	notifier notifier
	log      *logrus.Entry

	locate     func() string
	newInvoker func(binary string) invoker
}

// New builds a runner from the resolved configuration.
func New(cfg *config.Config) *Runner {
	locator := whisper.NewLocator(cfg.BinaryPath)

	r := &Runner{
		cfg:     cfg,
		lck:     lock.New(cfg.LockPath),
		checker: diagnostics.NewChecker(locator),
		log:     logrus.WithField("component", "run"),
		locate:  locator.Locate,
		newInvoker: func(binary string) invoker {
			return whisper.NewTranscriber(binary)
		},
	}
	if cfg.Notify {
		r.notifier = notify.New()
	}
	return r
}

// Check probes the external dependencies without taking the lock.
func (r *Runner) Check(ctx context.Context) diagnostics.Status {
	return r.checker.Check(ctx)
}

// Run performs one transcription end to end. The lock is released on every
// exit path, including interrupt and termination signals.
func (r *Runner) Run(ctx context.Context, opts Options) (whisper.Result, error) {
	if _, err := os.Stat(opts.AudioPath); err != nil {
		return whisper.Result{}, fmt.Errorf("audio file not found: %w", err)
	}

	if !whisper.IsSupported(opts.AudioPath) {
		ext := strings.ToLower(filepath.Ext(opts.AudioPath))
		return whisper.Result{}, fmt.Errorf("%w: %q (supported: %s)",
			whisper.ErrUnsupportedFormat, ext, whisper.FormatList())
	}

	if err := r.lck.Acquire(opts.Force); err != nil {
		return whisper.Result{}, err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			r.log.WithField("signal", sig).Info("interrupted, releasing lock")
			r.lck.Release()
			os.Exit(1)
		case <-done:
		}
	}()
	defer func() {
		signal.Stop(sigCh)
		close(done)
		r.lck.Release()
	}()

	status := r.checker.Check(ctx)
	if missing := status.Missing(); len(missing) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "missing required tools: %s", strings.Join(missing, ", "))
		for _, tool := range missing {
			fmt.Fprintf(&b, "\n  %s: %s", tool, diagnostics.Hint(tool))
		}
		return whisper.Result{}, fmt.Errorf("%s", b.String())
	}

	selected, err := r.selectModel(opts)
	if err != nil {
		return whisper.Result{}, err
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = r.cfg.OutputDir
	}
	if outputDir == "" {
		outputDir = filepath.Dir(opts.AudioPath)
	}

	language := opts.Language
	if language == "" {
		language = "auto"
	}

	r.log.WithFields(logrus.Fields{
		"input":    opts.AudioPath,
		"model":    selected,
		"language": language,
		"output":   outputDir,
	}).Info("starting transcription")

	result, err := r.newInvoker(r.locate()).Transcribe(ctx, whisper.Request{
		Input:     opts.AudioPath,
		Model:     selected,
		Language:  language,
		OutputDir: outputDir,
	})
	if err != nil {
		r.sendNotification(false, err.Error())
		return whisper.Result{}, err
	}

	r.log.WithField("artifact", result.ArtifactPath).Info("transcription complete")
	r.sendNotification(true, filepath.Base(result.ArtifactPath))
	return result, nil
}

// selectModel applies the explicit override or the byte-size heuristic. With
// smart selection disabled and no explicit model, the mid-tier default is used.
func (r *Runner) selectModel(opts Options) (model.Model, error) {
	if opts.Model != "" && opts.Model != model.Auto {
		return opts.Model, nil
	}
	if !opts.SmartModel {
		return model.Medium, nil
	}
	return model.Select(opts.AudioPath, model.Auto)
}

// sendNotification emits a best-effort desktop notification; failures are
// logged and ignored.
func (r *Runner) sendNotification(ok bool, detail string) {
	if r.notifier == nil {
		return
	}

	var err error
	if ok {
		err = r.notifier.Info("Transcription complete", detail)
	} else {
		err = r.notifier.Error("Transcription failed", detail)
	}
	if err != nil {
		r.log.WithError(err).Warn("could not send notification")
	}
}

// NewForTests builds a runner with injectable collaborators.
func NewForTests(
	cfg *config.Config,
	lck *lock.Lock,
	checker *diagnostics.Checker,
	locate func() string,
	newInvoker func(binary string) invoker,
) *Runner {
	return &Runner{
		cfg:        cfg,
		lck:        lck,
		checker:    checker,
		log:        logrus.WithField("component", "run"),
		locate:     locate,
		newInvoker: newInvoker,
	}
}
