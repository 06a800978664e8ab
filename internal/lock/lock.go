// Package lock serializes transcription runs machine-wide through a pidfile
// at a fixed well-known path. The whisper binary is resource-heavy and not
// safely concurrent on constrained hardware, so at most one run may hold the
// lock at a time.
//
// The stale-cleanup path (read pid, decide the holder is dead, remove the
// file, create a new one) is not atomic: two processes racing through it can
// both believe they acquired the lock. The window is a few syscalls wide and
// the tool is human-invoked, so it is accepted rather than closed with an
// O_EXCL retry loop. SIGKILL or power loss leaves a stale file behind; the
// next acquirer's liveness check cleans it up.
package lock

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/sirupsen/logrus"
)

// DefaultPath is the well-known lock file location.
const DefaultPath = "/tmp/whisper-transcribe.lock"

// ErrHeld means another live instance holds the lock and force was not
// requested.
var ErrHeld = errors.New("another transcription is already running")

// Liveness reports whether the process with the given pid exists. It must not
// affect the target process.
type Liveness func(pid int) bool

// ProcessAlive is the production liveness probe.
func ProcessAlive(pid int) bool {
	alive, err := process.PidExists(int32(pid))
	if err != nil {
		return false
	}
	return alive
}

// Lock is a file-based single-instance mutex. The file holds the owning pid
// as text.
type Lock struct {
	path string

	pid       func() int
	alive     Liveness
	terminate func(pid int) error
	settle    time.Duration

	log *logrus.Entry
}

// New builds a lock at path wired to the real process table. An empty path
// uses DefaultPath.
func New(path string) *Lock {
	if path == "" {
		path = DefaultPath
	}
	return &Lock{
		path:      path,
		pid:       os.Getpid,
		alive:     ProcessAlive,
		terminate: sigterm,
		settle:    500 * time.Millisecond,
		log:       logrus.WithField("component", "lock"),
	}
}

// sigterm asks the process with the given pid to exit.
func sigterm(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGTERM)
}

// Acquire takes the lock for the calling process.
//
// A missing file is the fast path. A file holding an unreadable or unparsable
// pid is treated as stale and replaced. A file holding a dead pid is stale and
// replaced. A file holding a live pid fails with ErrHeld unless force is set,
// in which case the holder is sent SIGTERM, given a moment to exit, and the
// file is replaced unconditionally.
func (l *Lock) Acquire(force bool) error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return l.create()
		}
		// Unreadable lock file: ownership is unverifiable, treat as stale.
		l.log.WithError(err).Debug("removing unreadable lock file")
		_ = os.Remove(l.path)
		return l.create()
	}

	holder, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		l.log.Debug("removing corrupt lock file")
		_ = os.Remove(l.path)
		return l.create()
	}

	if !l.alive(holder) {
		l.log.WithField("stale_pid", holder).Debug("removing stale lock")
		_ = os.Remove(l.path)
		return l.create()
	}

	if !force {
		return fmt.Errorf("%w (pid %d); use --force to take over", ErrHeld, holder)
	}

	l.log.WithField("holder_pid", holder).Info("forcing lock takeover")
	if err := l.terminate(holder); err != nil {
		l.log.WithError(err).Debug("could not signal lock holder")
	}
	time.Sleep(l.settle)

	// Takeover was explicit; remove unconditionally.
	_ = os.Remove(l.path)
	return l.create()
}

func (l *Lock) create() error {
	pid := strconv.Itoa(l.pid())
	if err := os.WriteFile(l.path, []byte(pid), 0o644); err != nil {
		return fmt.Errorf("cannot write lock file %s: %w", l.path, err)
	}
	l.log.WithField("pid", pid).Debug("lock acquired")
	return nil
}

// Release removes the lock file if the calling process owns it. Another
// process's lock is left untouched. Release is idempotent and never fails:
// it runs inside exit and signal handlers where an error would mask the real
// outcome, so everything is swallowed (logged at debug).
func (l *Lock) Release() {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.WithError(err).Debug("release: cannot read lock file")
		}
		return
	}

	holder, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || holder != l.pid() {
		l.log.Debug("release: lock not owned by this process, leaving it")
		return
	}

	if err := os.Remove(l.path); err != nil {
		l.log.WithError(err).Debug("release: cannot remove lock file")
		return
	}
	l.log.Debug("lock released")
}

// HolderPID returns the pid recorded in the lock file, if any.
func (l *Lock) HolderPID() (int, bool) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, false
	}
	holder, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return holder, true
}

// NewForTests builds a lock with injectable pid, liveness and termination.
func NewForTests(path string, pid func() int, alive Liveness, terminate func(int) error, settle time.Duration) *Lock {
	return &Lock{
		path:      path,
		pid:       pid,
		alive:     alive,
		terminate: terminate,
		settle:    settle,
		log:       logrus.WithField("component", "lock"),
	}
}
