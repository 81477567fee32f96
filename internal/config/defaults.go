package config

import (
	"github.com/mrz1836/xcbundle/internal/constants"
	"github.com/mrz1836/xcbundle/internal/domain"
)

// DefaultConfig returns a new Config with default values.
// These defaults are the base layer that config files, environment
// variables, and CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		Package: PackageConfig{
			Path:      constants.DefaultPackagePath,
			BuildPath: constants.DefaultBuildPath,
		},
		Build: BuildConfig{
			Configuration: string(domain.ConfigurationRelease),
			Clean:         true,
		},
		Output: OutputConfig{
			Path: constants.DefaultOutputPath,
		},
		Symbols: SymbolsConfig{
			Enabled: true,
		},
		Toolchain: domain.DefaultToolchain(),
	}
}
