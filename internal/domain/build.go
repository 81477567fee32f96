// Package domain provides shared data types for xcbundle.
//
// These types flow between the build, merge, and packaging stages and are
// kept here to avoid import cycles between those packages.
//
// IMPORTANT: This package may import internal/errors and internal/constants only.
package domain

import (
	"fmt"
	"strings"

	"github.com/mrz1836/xcbundle/internal/errors"
)

// Configuration is the xcodebuild build configuration.
type Configuration string

// Supported build configurations.
const (
	ConfigurationDebug   Configuration = "debug"
	ConfigurationRelease Configuration = "release"
)

// ParseConfiguration parses a configuration name case-insensitively.
func ParseConfiguration(s string) (Configuration, error) {
	switch Configuration(strings.ToLower(strings.TrimSpace(s))) {
	case ConfigurationDebug:
		return ConfigurationDebug, nil
	case ConfigurationRelease:
		return ConfigurationRelease, nil
	default:
		return "", fmt.Errorf("%w: %q must be debug or release", errors.ErrInvalidConfiguration, s)
	}
}

// XcodeName returns the configuration name as xcodebuild expects it.
func (c Configuration) XcodeName() string {
	if c == ConfigurationDebug {
		return "Debug"
	}
	return "Release"
}

// BuildSetting is an Xcode build setting override, e.g. IPHONEOS_DEPLOYMENT_TARGET=13.0.
type BuildSetting struct {
	// Name is the build setting name, e.g. IPHONEOS_DEPLOYMENT_TARGET.
	Name string `json:"name" yaml:"name"`
	// Value is the build setting value.
	Value string `json:"value" yaml:"value"`
}

// ParseBuildSetting parses NAME=VALUE. The input must contain exactly one '='
// and both sides are trimmed of surrounding whitespace.
func ParseBuildSetting(s string) (BuildSetting, error) {
	parts := strings.Split(s, "=")
	if len(parts) != 2 {
		return BuildSetting{}, fmt.Errorf("%w: %q", errors.ErrInvalidBuildSetting, s)
	}
	setting := BuildSetting{
		Name:  strings.TrimSpace(parts[0]),
		Value: strings.TrimSpace(parts[1]),
	}
	if setting.Name == "" {
		return BuildSetting{}, fmt.Errorf("%w: %q has an empty name", errors.ErrInvalidBuildSetting, s)
	}
	return setting, nil
}

// ParseBuildSettings parses each entry with ParseBuildSetting, stopping at the first error.
func ParseBuildSettings(values []string) ([]BuildSetting, error) {
	settings := make([]BuildSetting, 0, len(values))
	for _, v := range values {
		s, err := ParseBuildSetting(v)
		if err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, nil
}

// String renders the setting as a command-line argument.
func (s BuildSetting) String() string {
	return s.Name + "=" + s.Value
}

// BuildResult is produced once per (target, platform variant) after a
// successful archive build.
type BuildResult struct {
	// Target is the requested product or target name.
	Target string `json:"target"`
	// FrameworkPath is the absolute path of the platform-specific framework.
	FrameworkPath string `json:"framework_path"`
	// DebugSymbolsPath is the directory where xcodebuild places dSYMs and
	// symbol maps for this variant.
	DebugSymbolsPath string `json:"debug_symbols_path"`
}

// MergedBundle is one multi-platform bundle for a target.
type MergedBundle struct {
	Target string `json:"target"`
	Path   string `json:"path"`
}

// PackagedArtifact is the zip and checksum side file for one bundle.
type PackagedArtifact struct {
	Target       string `json:"target"`
	Suffix       string `json:"suffix,omitempty"`
	ZipPath      string `json:"zip_path"`
	ChecksumPath string `json:"checksum_path"`
	Checksum     string `json:"checksum"`
}
