package config

import (
	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/platform"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - package.path and package.build_path must not be empty
//   - build.configuration must be debug or release
//   - build.platforms must name known platforms
//   - build.settings must be NAME=VALUE
//   - build.timeout must not be negative
//   - build.legacy requires package.project
//   - output.path must not be empty
//   - toolchain.xcodebuild, dwarfdump, ditto and swift must not be empty
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validatePackageConfig(&cfg.Package); err != nil {
		return err
	}

	if err := validateBuildConfig(&cfg.Build, &cfg.Package); err != nil {
		return err
	}

	if cfg.Output.Path == "" {
		return errors.Wrap(errors.ErrConfigInvalidOutput, "output.path must not be empty")
	}

	return validateToolchain(&cfg.Toolchain)
}

func validatePackageConfig(cfg *PackageConfig) error {
	if cfg.Path == "" {
		return errors.Wrap(errors.ErrConfigInvalidPackage, "package.path must not be empty")
	}
	if cfg.BuildPath == "" {
		return errors.Wrap(errors.ErrConfigInvalidPackage, "package.build_path must not be empty")
	}
	return nil
}

func validateBuildConfig(cfg *BuildConfig, pkg *PackageConfig) error {
	if _, err := domain.ParseConfiguration(cfg.Configuration); err != nil {
		return errors.Wrap(err, "build.configuration")
	}

	if _, err := platform.ParseAll(cfg.Platforms); err != nil {
		return errors.Wrap(err, "build.platforms")
	}

	if _, err := domain.ParseBuildSettings(cfg.Settings); err != nil {
		return errors.Wrap(err, "build.settings")
	}

	if cfg.Timeout < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidBuild,
			"build.timeout must not be negative, got %s", cfg.Timeout)
	}

	if cfg.Legacy && pkg.Project == "" {
		return errors.Wrap(errors.ErrLegacyRequiresProject,
			"build.legacy needs package.project")
	}

	return nil
}

func validateToolchain(t *domain.Toolchain) error {
	tools := []struct {
		key   string
		value string
	}{
		{"toolchain.xcodebuild", t.Xcodebuild},
		{"toolchain.dwarfdump", t.Dwarfdump},
		{"toolchain.ditto", t.Ditto},
		{"toolchain.swift", t.Swift},
	}
	for _, tool := range tools {
		if tool.value == "" {
			return errors.Wrapf(errors.ErrConfigInvalidToolchain, "%s must not be empty", tool.key)
		}
	}
	return nil
}
