package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/xcbundle/internal/constants"
	"github.com/mrz1836/xcbundle/internal/errors"
)

// newViperInstance creates a Viper instance with defaults, the XCBUNDLE_
// environment prefix, and dotted keys mapped to underscores.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr) || os.IsNotExist(err)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration for the package at packagePath from all available
// sources with proper precedence:
//  1. Environment variables (XCBUNDLE_* prefix)
//  2. Project config (<packagePath>/.xcbundle.yaml)
//  3. Global config ($XDG_CONFIG_HOME/xcbundle/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not an error. For CLI flag overrides, use
// LoadWithOverrides instead.
func Load(ctx context.Context, packagePath string) (*Config, error) {
	if packagePath == "" {
		packagePath = constants.DefaultPackagePath
	}

	cfg, err := LoadFromPaths(ctx, ProjectConfigPath(packagePath), GlobalConfigPath())
	if err != nil {
		return nil, err
	}

	// The project config lives in the package, so a package path given on the
	// command line wins over whatever the file says.
	if cfg.Package.Path == constants.DefaultPackagePath {
		cfg.Package.Path = packagePath
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Str("package", cfg.Package.Path).
		Str("build_path", cfg.Package.BuildPath).
		Str("configuration", cfg.Build.Configuration).
		Strs("platforms", cfg.Build.Platforms).
		Bool("legacy", cfg.Build.Legacy).
		Bool("zip", cfg.Output.Zip).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths.
//
// projectConfigPath is the project-level config (higher priority).
// globalConfigPath is the global config (lower priority).
// Either path can be empty or missing to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	// Global config first (lower precedence)
	if globalConfigPath != "" && fileExists(globalConfigPath) {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	// Project config merges over global
	if projectConfigPath != "" && fileExists(projectConfigPath) {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// LoadWithOverrides loads configuration and applies CLI flag overrides, which
// have the highest precedence.
//
// Only non-zero values in overrides are applied. Boolean fields cannot be
// overridden to false this way because false is indistinguishable from unset;
// the CLI sets them directly when the flag was changed:
//
//	if cmd.Flags().Changed("clean") {
//	    cfg.Build.Clean = cleanFlag
//	}
func LoadWithOverrides(ctx context.Context, packagePath string, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx, packagePath)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// viperDecoderOption configures mapstructure to decode durations and
// comma-separated lists from strings (environment variables arrive as strings).
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}

// setDefaults configures all default values on the Viper instance.
// These defaults match DefaultConfig().
// IMPORTANT: Keys must match the YAML tag names exactly for proper mapping.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Package defaults
	v.SetDefault("package.path", d.Package.Path)
	v.SetDefault("package.build_path", d.Package.BuildPath)
	v.SetDefault("package.project", "")

	// Build defaults
	v.SetDefault("build.configuration", d.Build.Configuration)
	v.SetDefault("build.platforms", []string{})
	v.SetDefault("build.settings", []string{})
	v.SetDefault("build.xcconfig", "")
	v.SetDefault("build.clean", d.Build.Clean)
	v.SetDefault("build.legacy", false)
	v.SetDefault("build.stack_evolution", false)
	v.SetDefault("build.framework_subpath", "")
	v.SetDefault("build.timeout", time.Duration(0).String())

	// Output defaults
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.zip", false)
	v.SetDefault("output.zip_version", "")
	v.SetDefault("output.github_action", false)

	// Symbols defaults
	v.SetDefault("symbols.enabled", d.Symbols.Enabled)

	// Toolchain defaults
	v.SetDefault("toolchain.xcrun", d.Toolchain.Xcrun)
	v.SetDefault("toolchain.xcodebuild", d.Toolchain.Xcodebuild)
	v.SetDefault("toolchain.dwarfdump", d.Toolchain.Dwarfdump)
	v.SetDefault("toolchain.ditto", d.Toolchain.Ditto)
	v.SetDefault("toolchain.swift", d.Toolchain.Swift)
}

// applyOverrides merges non-zero override values into the config.
func applyOverrides(cfg, overrides *Config) {
	applyPackageOverrides(cfg, overrides)
	applyBuildOverrides(cfg, overrides)

	if overrides.Output.Path != "" {
		cfg.Output.Path = overrides.Output.Path
	}
	if overrides.Output.ZipVersion != "" {
		cfg.Output.ZipVersion = overrides.Output.ZipVersion
	}
}

func applyPackageOverrides(cfg, overrides *Config) {
	if overrides.Package.Path != "" {
		cfg.Package.Path = overrides.Package.Path
	}
	if overrides.Package.BuildPath != "" {
		cfg.Package.BuildPath = overrides.Package.BuildPath
	}
	if overrides.Package.Project != "" {
		cfg.Package.Project = overrides.Package.Project
	}
}

func applyBuildOverrides(cfg, overrides *Config) {
	if overrides.Build.Configuration != "" {
		cfg.Build.Configuration = overrides.Build.Configuration
	}
	if len(overrides.Build.Platforms) > 0 {
		cfg.Build.Platforms = overrides.Build.Platforms
	}
	if len(overrides.Build.Settings) > 0 {
		cfg.Build.Settings = overrides.Build.Settings
	}
	if overrides.Build.Xcconfig != "" {
		cfg.Build.Xcconfig = overrides.Build.Xcconfig
	}
	if overrides.Build.FrameworkSubpath != "" {
		cfg.Build.FrameworkSubpath = overrides.Build.FrameworkSubpath
	}
	if overrides.Build.Timeout != 0 {
		cfg.Build.Timeout = overrides.Build.Timeout
	}
}
