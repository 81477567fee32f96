// Package flock guards a build directory against concurrent xcbundle runs.
//
// Two xcodebuild invocations writing to the same BUILD_DIR corrupt each
// other's incremental state, so a run holds an exclusive, non-blocking lock
// on a file inside the build directory for its whole duration:
//
//	lock, err := flock.Acquire(filepath.Join(buildDir, ".lock"))
//	if err != nil {
//	    // another run owns the directory
//	}
//	defer lock.Release()
package flock
