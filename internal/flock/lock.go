package flock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/xcbundle/internal/errors"
)

// Lock is a held lock file.
type Lock struct {
	file *os.File
}

// Acquire creates path (and its parent directory) if needed and takes an
// exclusive lock on it without waiting. It returns an error matching
// errors.ErrBuildDirLocked when another process holds the lock.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create lock directory")
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) //#nosec G304 -- lock path is inside the build directory
	if err != nil {
		return nil, errors.Wrap(err, "failed to open lock file")
	}

	if err := tryLock(f.Fd()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", errors.ErrBuildDirLocked, filepath.Dir(path))
	}

	// Record the owner for humans inspecting the file. Failure is harmless.
	if err := f.Truncate(0); err == nil {
		_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
	}

	return &Lock{file: f}, nil
}

// Release unlocks and closes the lock file. It is safe to call on a nil Lock
// and more than once.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil

	unlockErr := unlock(f.Fd())
	closeErr := f.Close()
	if unlockErr != nil {
		return errors.Wrap(unlockErr, "failed to release lock")
	}
	return closeErr
}
