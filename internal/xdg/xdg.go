// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Package xdg provides configuration directory paths for qol-tray.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "qol-tray"

// File names inside the config directory.
const (
	pluginsDirName  = "plugins"
	hotkeysFileName = "hotkeys.json"
	pidFileName     = "daemon-pids"
	configFileName  = "config.yaml"
)

// ConfigDir returns the qol-tray config directory.
// Checks XDG_CONFIG_HOME first, falls back to the platform user config dir.
func ConfigDir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, appName), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", oops.Code("CONFIG_DIR").Wrapf(err, "could not determine config directory")
	}
	return filepath.Join(base, appName), nil
}

// PluginsDir returns the directory holding one subdirectory per installed plugin.
func PluginsDir(configDir string) string {
	return filepath.Join(configDir, pluginsDirName)
}

// HotkeysPath returns the persisted hotkey bindings file.
func HotkeysPath(configDir string) string {
	return filepath.Join(configDir, hotkeysFileName)
}

// PIDFilePath returns the orphan-daemon registry file.
func PIDFilePath(configDir string) string {
	return filepath.Join(configDir, pidFileName)
}

// ConfigFilePath returns the optional application config file.
func ConfigFilePath(configDir string) string {
	return filepath.Join(configDir, configFileName)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
// Directories are created with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.With("path", path).Wrapf(err, "failed to create directory")
	}
	return nil
}
