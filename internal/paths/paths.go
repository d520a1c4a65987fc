// Package paths resolves the on-disk locations frisk uses: the XDG cache
// directory for binary source caches, the XDG config directory for TOML
// files, and the well-known lock/socket pair in /tmp.
package paths

import (
	"os"
	"path/filepath"
)

const appDirName = "frisk"

// CacheDir returns $XDG_CACHE_HOME/frisk, falling back to ~/.cache/frisk.
// The directory is created if missing.
func CacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// ConfigDir returns $XDG_CONFIG_HOME/frisk, falling back to ~/.config/frisk.
// The directory is created if missing.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// LogDir returns the directory daemon and launcher logs rotate under.
func LogDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "state", appDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// LockFile is the single-instance lock holding the primary's PID.
func LockFile() string {
	return filepath.Join(runtimeDir(), "frisk.lock")
}

// SocketFile is the unix socket the primary instance listens on.
func SocketFile() string {
	return filepath.Join(runtimeDir(), "frisk.sock")
}

// runtimeDir is where the lock/socket pair lives. /tmp matches the
// historical location; FRISK_RUNTIME_DIR overrides it for tests.
func runtimeDir() string {
	if dir := os.Getenv("FRISK_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return "/tmp"
}
