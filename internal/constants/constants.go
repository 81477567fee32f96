// Package constants provides centralized constant values used throughout xcbundle.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// AppName is used for directory naming (config, state, logs, build subdirectory).
const AppName = "xcbundle"

// EnvPrefix is the prefix for environment variable overrides (XCBUNDLE_*).
const EnvPrefix = "XCBUNDLE"

// Default locations, relative to the package root.
const (
	// DefaultPackagePath is the package root when none is given.
	DefaultPackagePath = "."

	// DefaultBuildPath is the SwiftPM build/cache directory.
	DefaultBuildPath = ".build"

	// DefaultOutputPath is where merged bundles are written.
	DefaultOutputPath = "."
)

// File names used inside the build directory.
const (
	// WorkspaceStateFileName is the SwiftPM workspace state file inside the build directory.
	WorkspaceStateFileName = "workspace-state.json"

	// ArtifactListFileName is the side file listing packaged artifacts for CI upload.
	ArtifactListFileName = "xcframework-zipfile.url"

	// DistributionXcconfigName is the generated xcconfig enabling library evolution.
	DistributionXcconfigName = "Distribution.xcconfig"

	// LockFileName is the build directory lock held for the duration of a run.
	LockFileName = ".lock"

	// ProjectConfigName is the project config file, relative to the package root.
	ProjectConfigName = ".xcbundle.yaml"

	// GlobalConfigName is the global config file inside the XDG config directory.
	GlobalConfigName = "config.yaml"
)

// Bundle and artifact extensions.
const (
	FrameworkExtension   = ".framework"
	XCFrameworkExtension = ".xcframework"
	DSYMExtension        = ".framework.dSYM"
	SymbolMapExtension   = ".bcsymbolmap"
	ZipExtension         = ".zip"
	ChecksumExtension    = ".sha256"
)

// Default archive-relative locations of the built framework.
// Neither is reported by xcodebuild; both are observed conventions and can be
// overridden in config.
const (
	// CurrentFrameworkSubpath is where -workspace archives place frameworks.
	CurrentFrameworkSubpath = "Products/usr/local/lib"

	// LegacyFrameworkSubpath is where -project archives place frameworks.
	LegacyFrameworkSubpath = "Products/Library/Frameworks"

	// DWARFSubpath is the location of the debug-info binary inside a dSYM bundle.
	DWARFSubpath = "Contents/Resources/DWARF"
)

// Build settings passed to xcodebuild.
const (
	SettingBuildDir                    = "BUILD_DIR"
	SettingSkipInstall                 = "SKIP_INSTALL"
	SettingBuildLibraryForDistribution = "BUILD_LIBRARY_FOR_DISTRIBUTION"
	SettingSupportsMacCatalyst         = "SUPPORTS_MACCATALYST"
)

// ToolDetectionTimeout bounds the doctor command's toolchain probes.
const ToolDetectionTimeout = 10 * time.Second
