// Package errors provides centralized error handling for xcbundle.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrExternalTool indicates that an external process (xcodebuild, dwarfdump,
	// ditto, swift) exited with a non-zero code or was terminated by a signal.
	ErrExternalTool = errors.New("external tool failed")

	// ErrNoProducts indicates that no products were requested and the package
	// declares no library products to fall back on.
	ErrNoProducts = errors.New("no products to build")

	// ErrInvalidProducts indicates that one or more requested product/target names
	// do not correspond to any buildable target in the package graph.
	ErrInvalidProducts = errors.New("invalid product or target name")

	// ErrInvalidPlatform indicates an unknown platform name was requested.
	ErrInvalidPlatform = errors.New("invalid platform")

	// ErrNoPlatforms indicates that the requested platforms and the platforms
	// declared by the package manifest have nothing in common.
	ErrNoPlatforms = errors.New("no supported platforms")

	// ErrInvalidBuildSetting indicates a build setting was not in NAME=VALUE form.
	ErrInvalidBuildSetting = errors.New("invalid build setting")

	// ErrInvalidConfiguration indicates a build configuration other than debug or release.
	ErrInvalidConfiguration = errors.New("invalid build configuration")

	// ErrLegacyRequiresProject indicates that the legacy build policy was selected
	// without an Xcode project to build against.
	ErrLegacyRequiresProject = errors.New("legacy build requires an xcode project")

	// ErrBuildDirLocked indicates that another pipeline already holds the
	// build directory lock.
	ErrBuildDirLocked = errors.New("build directory is locked")

	// ErrChecksumMismatch indicates that a zip's recomputed checksum differs
	// from the one recorded in its sidecar file.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrUnsupportedArchive indicates a checksum was requested for a file that is not a zip.
	ErrUnsupportedArchive = errors.New("unsupported archive type")

	// ErrToolMissing indicates a toolchain executable could not be found.
	ErrToolMissing = errors.New("required tool not found")

	// ErrManifestLoad indicates the package manifest or dependency graph could not be loaded.
	ErrManifestLoad = errors.New("failed to load package manifest")

	// ErrWorkspaceStateCorrupted indicates the workspace state file exists but cannot be parsed.
	ErrWorkspaceStateCorrupted = errors.New("workspace state corrupted")

	// ErrConfigNil indicates a nil configuration was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidPackage indicates an invalid package configuration value.
	ErrConfigInvalidPackage = errors.New("invalid package configuration")

	// ErrConfigInvalidBuild indicates an invalid build configuration value.
	ErrConfigInvalidBuild = errors.New("invalid build configuration value")

	// ErrConfigInvalidOutput indicates an invalid output configuration value.
	ErrConfigInvalidOutput = errors.New("invalid output configuration")

	// ErrConfigInvalidToolchain indicates an invalid toolchain configuration value.
	ErrConfigInvalidToolchain = errors.New("invalid toolchain configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// The CLI uses it to suppress duplicate error printing.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
