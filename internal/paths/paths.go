// Package paths resolves the plystore configuration and data directories.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName is the directory name used under platform base directories.
const appName = "plystore"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "PLYSTORE_CONFIG_DIR"
	EnvDataDir   = "PLYSTORE_DATA_DIR"
)

// platform holds the lookups that tests override.
var platform = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// base describes where one kind of directory lives on Linux.
type base struct {
	xdgEnv   string   // e.g. XDG_CONFIG_HOME
	fallback []string // path under $HOME when xdgEnv is unset
}

var (
	configBase = base{xdgEnv: "XDG_CONFIG_HOME", fallback: []string{".config"}}
	dataBase   = base{xdgEnv: "XDG_DATA_HOME", fallback: []string{".local", "share"}}
)

// platformDir returns <base>/plystore. Linux follows the XDG Base Directory
// layout; macOS and Windows use os.UserConfigDir for both kinds.
func platformDir(b base) (string, error) {
	if platform.goos != "linux" {
		dir, err := platform.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
	if xdg := os.Getenv(b.xdgEnv); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platform.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, b.fallback...), appName)...), nil
}

// DefaultConfigDir returns the platform default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/plystore (fallback ~/.config/plystore)
// macOS:   ~/Library/Application Support/plystore
// Windows: %APPDATA%/plystore
func DefaultConfigDir() (string, error) {
	return platformDir(configBase)
}

// DefaultDataDir returns the platform default data directory.
//
// Linux:   $XDG_DATA_HOME/plystore (fallback ~/.local/share/plystore)
// macOS and Windows: same as the config directory.
func DefaultDataDir() (string, error) {
	return platformDir(dataBase)
}

// ResolveConfigDir picks the configuration directory:
// flag > PLYSTORE_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	return firstOf(DefaultConfigDir, flag, os.Getenv(EnvConfigDir))
}

// ResolveDataDir picks the data directory:
// flag > data_dir from config.yaml > PLYSTORE_DATA_DIR > DefaultDataDir.
func ResolveDataDir(flag, configValue string) (string, error) {
	return firstOf(DefaultDataDir, flag, configValue, os.Getenv(EnvDataDir))
}

// firstOf returns the absolute form of the first non-empty candidate, or
// the fallback when all are empty.
func firstOf(fallback func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return fallback()
}
