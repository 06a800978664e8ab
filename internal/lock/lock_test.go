package lock

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLock(t *testing.T, pid int, alive Liveness) (*Lock, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whisper.lock")
	l := NewForTests(path, func() int { return pid }, alive, func(int) error { return nil }, 0)
	return l, path
}

func lockContent(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestAcquireFresh(t *testing.T) {
	l, path := testLock(t, 1234, func(int) bool { return true })

	require.NoError(t, l.Acquire(false))
	assert.Equal(t, "1234", lockContent(t, path))
}

func TestAcquireHeldByLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisper.lock")
	alive := func(int) bool { return true }

	first := NewForTests(path, func() int { return 100 }, alive, func(int) error { return nil }, 0)
	require.NoError(t, first.Acquire(false))

	second := NewForTests(path, func() int { return 200 }, alive, func(int) error { return nil }, 0)
	err := second.Acquire(false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHeld)

	// The first holder's pid is still recorded.
	assert.Equal(t, "100", lockContent(t, path))
}

func TestAcquireStaleLockReplaced(t *testing.T) {
	l, path := testLock(t, 555, func(int) bool { return false })
	require.NoError(t, os.WriteFile(path, []byte("99999"), 0o644))

	require.NoError(t, l.Acquire(false))
	assert.Equal(t, "555", lockContent(t, path))
}

func TestAcquireCorruptLockReplaced(t *testing.T) {
	l, path := testLock(t, 555, func(int) bool {
		t.Fatal("liveness must not be probed for an unparsable pid")
		return true
	})
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))

	require.NoError(t, l.Acquire(false))
	assert.Equal(t, "555", lockContent(t, path))
}

func TestAcquireForceTerminatesHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisper.lock")
	require.NoError(t, os.WriteFile(path, []byte("4321"), 0o644))

	var signalled int
	l := NewForTests(path,
		func() int { return 777 },
		func(int) bool { return true },
		func(pid int) error { signalled = pid; return nil },
		0,
	)

	require.NoError(t, l.Acquire(true))
	assert.Equal(t, 4321, signalled)
	assert.Equal(t, "777", lockContent(t, path))
}

func TestReleaseByOwner(t *testing.T) {
	l, path := testLock(t, 42, func(int) bool { return true })
	require.NoError(t, l.Acquire(false))

	l.Release()
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Idempotent: a second release is a no-op.
	l.Release()
}

func TestReleaseByNonOwnerLeavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisper.lock")
	require.NoError(t, os.WriteFile(path, []byte("111"), 0o644))

	l := NewForTests(path, func() int { return 222 }, func(int) bool { return true }, func(int) error { return nil }, 0)
	l.Release()

	assert.Equal(t, "111", lockContent(t, path))
}

func TestReleaseThenReacquire(t *testing.T) {
	probed := false
	l, path := testLock(t, 42, func(int) bool { probed = true; return true })

	require.NoError(t, l.Acquire(false))
	l.Release()
	require.NoError(t, l.Acquire(false))

	// The file was gone, so the fast path applies; no stale cleanup.
	assert.False(t, probed)
	assert.Equal(t, "42", lockContent(t, path))
}

func TestHolderPID(t *testing.T) {
	l, path := testLock(t, 42, func(int) bool { return true })

	_, ok := l.HolderPID()
	assert.False(t, ok)

	require.NoError(t, l.Acquire(false))
	pid, ok := l.HolderPID()
	assert.True(t, ok)
	assert.Equal(t, 42, pid)

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	_, ok = l.HolderPID()
	assert.False(t, ok)
}

func TestProcessAliveSelf(t *testing.T) {
	assert.True(t, ProcessAlive(os.Getpid()))
}

func TestDefaultPathUsedWhenEmpty(t *testing.T) {
	l := New("")
	assert.Equal(t, DefaultPath, l.path)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strconv.Itoa(l.pid()))
}
