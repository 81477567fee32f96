package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/mrz1836/xcbundle/internal/constants"
)

// GlobalConfigDir returns the global xcbundle configuration directory,
// $XDG_CONFIG_HOME/xcbundle.
func GlobalConfigDir() string {
	return filepath.Join(xdg.ConfigHome, constants.AppName)
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), constants.GlobalConfigName)
}

// ProjectConfigPath returns the project configuration file for the package at packagePath.
func ProjectConfigPath(packagePath string) string {
	return filepath.Join(packagePath, constants.ProjectConfigName)
}

// LogDir returns the directory for rotating log files, $XDG_STATE_HOME/xcbundle/logs.
func LogDir() string {
	return filepath.Join(xdg.StateHome, constants.AppName, constants.LogsDir)
}
