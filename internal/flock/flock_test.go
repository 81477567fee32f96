//go:build unix

package flock

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/xcbundle/internal/errors"
)

func TestAcquire(t *testing.T) {
	t.Parallel()

	t.Run("creates the lock file and directory", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "build", "xcbundle", ".lock")

		lock, err := Acquire(path)
		require.NoError(t, err)
		defer func() { assert.NoError(t, lock.Release()) }()

		data, err := os.ReadFile(path) //nolint:gosec // test path
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))
	})

	t.Run("second acquire fails while held", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".lock")

		first, err := Acquire(path)
		require.NoError(t, err)
		defer func() { assert.NoError(t, first.Release()) }()

		second, err := Acquire(path)
		require.ErrorIs(t, err, errors.ErrBuildDirLocked)
		assert.Nil(t, second)
	})

	t.Run("can be reacquired after release", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".lock")

		first, err := Acquire(path)
		require.NoError(t, err)
		require.NoError(t, first.Release())

		second, err := Acquire(path)
		require.NoError(t, err)
		require.NoError(t, second.Release())
	})
}

func TestRelease_Idempotent(t *testing.T) {
	lock, err := Acquire(filepath.Join(t.TempDir(), ".lock"))
	require.NoError(t, err)

	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release())

	var nilLock *Lock
	assert.NoError(t, nilLock.Release())
}
