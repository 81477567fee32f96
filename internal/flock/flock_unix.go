//go:build unix

package flock

import "syscall"

// tryLock claims the build directory for this run. A second xcbundle pointed
// at the same work directory gets EWOULDBLOCK back instead of queueing behind
// the first.
func tryLock(fd uintptr) error {
	return flock(fd, syscall.LOCK_EX|syscall.LOCK_NB)
}

// unlock hands the build directory back. Closing the lock file would drop the
// lock too, but Release unlocks first so the error is reported.
func unlock(fd uintptr) error {
	return flock(fd, syscall.LOCK_UN)
}

func flock(fd uintptr, how int) error {
	return syscall.Flock(int(fd), how)
}
