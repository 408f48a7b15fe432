// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

// Package xdg provides XDG Base Directory paths for inkpad.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "inkpad"

// ConfigFileName is the config file name inside ConfigDir.
const ConfigFileName = "config.yaml"

// ConfigDir returns the XDG config directory for inkpad.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", oops.In("xdg").Hint("set HOME or XDG_CONFIG_HOME").Wrap(err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName), nil
}

// DataDir returns the XDG data directory for inkpad.
// Checks XDG_DATA_HOME first, falls back to ~/.local/share.
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", oops.In("xdg").Hint("set HOME or XDG_DATA_HOME").Wrap(err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, appName), nil
}

// ConfigFile returns the default config file path.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// PluginsDir returns the default script plugins directory. Plugins shipped
// with the user's configuration live under ConfigDir; the data directory
// is not searched.
func PluginsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "plugins"), nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
// Directories are created with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.In("xdg").With("path", path).Wrapf(err, "failed to create directory")
	}
	return nil
}
