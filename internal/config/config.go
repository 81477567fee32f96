// Package config provides configuration management for xcbundle with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (XCBUNDLE_* prefix)
//  3. Project config (<package>/.xcbundle.yaml)
//  4. Global config ($XDG_CONFIG_HOME/xcbundle/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants, internal/domain and
// internal/errors, but MUST NOT import the pipeline packages.
package config

import (
	"path/filepath"
	"time"

	"github.com/mrz1836/xcbundle/internal/constants"
	"github.com/mrz1836/xcbundle/internal/domain"
)

// Config is the root configuration structure for xcbundle.
type Config struct {
	// Package locates the Swift package and its build directory.
	Package PackageConfig `json:"package" yaml:"package" mapstructure:"package"`

	// Build controls the xcodebuild archive invocations.
	Build BuildConfig `json:"build" yaml:"build" mapstructure:"build"`

	// Output controls where bundles go and whether they are zipped.
	Output OutputConfig `json:"output" yaml:"output" mapstructure:"output"`

	// Symbols controls debug-symbol collection.
	Symbols SymbolsConfig `json:"symbols" yaml:"symbols" mapstructure:"symbols"`

	// Toolchain names the external tools to run.
	Toolchain domain.Toolchain `json:"toolchain" yaml:"toolchain" mapstructure:"toolchain"`
}

// PackageConfig locates the package.
type PackageConfig struct {
	// Path is the Swift package directory.
	// Default: "."
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// BuildPath is SwiftPM's build directory, relative to Path unless absolute.
	// Default: ".build"
	BuildPath string `json:"build_path" yaml:"build_path" mapstructure:"build_path"`

	// Project is the Xcode project used by the legacy build policy.
	Project string `json:"project" yaml:"project" mapstructure:"project"`
}

// BuildConfig controls archive builds.
type BuildConfig struct {
	// Configuration is "debug" or "release".
	// Default: "release"
	Configuration string `json:"configuration" yaml:"configuration" mapstructure:"configuration"`

	// Platforms limits the platforms built. Empty builds every platform the
	// package supports.
	Platforms []string `json:"platforms" yaml:"platforms" mapstructure:"platforms"`

	// Settings are NAME=VALUE build-setting overrides.
	Settings []string `json:"settings" yaml:"settings" mapstructure:"settings"`

	// Xcconfig is an xcconfig override file, relative to the package unless absolute.
	Xcconfig string `json:"xcconfig" yaml:"xcconfig" mapstructure:"xcconfig"`

	// Clean rebuilds from scratch.
	// Default: true
	Clean bool `json:"clean" yaml:"clean" mapstructure:"clean"`

	// Legacy builds through an Xcode project instead of the package workspace.
	Legacy bool `json:"legacy" yaml:"legacy" mapstructure:"legacy"`

	// StackEvolution enables library evolution for every dependency, not
	// just the requested products (legacy only).
	StackEvolution bool `json:"stack_evolution" yaml:"stack_evolution" mapstructure:"stack_evolution"`

	// FrameworkSubpath overrides where archives keep the framework. Empty uses
	// the policy default.
	FrameworkSubpath string `json:"framework_subpath" yaml:"framework_subpath" mapstructure:"framework_subpath"`

	// Timeout bounds the whole run. Zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// OutputConfig controls produced artifacts.
type OutputConfig struct {
	// Path is the directory receiving .xcframework bundles.
	// Default: "."
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Zip packages each bundle as a zip with a sha256 side file.
	Zip bool `json:"zip" yaml:"zip" mapstructure:"zip"`

	// ZipVersion is the version suffix used when a product's package has no
	// resolved version.
	ZipVersion string `json:"zip_version" yaml:"zip_version" mapstructure:"zip_version"`

	// GitHubAction writes the artifact list for a CI step to upload.
	GitHubAction bool `json:"github_action" yaml:"github_action" mapstructure:"github_action"`
}

// SymbolsConfig controls debug-symbol collection.
type SymbolsConfig struct {
	// Enabled embeds dSYMs and symbol maps in the bundle.
	// Default: true
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
}

// PackageRoot returns the absolute package directory.
func (c *Config) PackageRoot() string {
	return absPath(c.Package.Path)
}

// BuildPath returns the absolute SwiftPM build directory.
func (c *Config) BuildPath() string {
	if filepath.IsAbs(c.Package.BuildPath) {
		return filepath.Clean(c.Package.BuildPath)
	}
	return filepath.Join(c.PackageRoot(), c.Package.BuildPath)
}

// WorkDir returns xcbundle's own directory inside the build directory.
func (c *Config) WorkDir() string {
	return filepath.Join(c.BuildPath(), constants.AppName)
}

// OutputPath returns the absolute output directory.
func (c *Config) OutputPath() string {
	return absPath(c.Output.Path)
}

// ArtifactListPath returns where the CI artifact list is written.
func (c *Config) ArtifactListPath() string {
	return filepath.Join(c.BuildPath(), constants.ArtifactListFileName)
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
