package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/calrichards/frisk/internal/paths"
)

// UserConfigFileName is the TOML config file for user preferences.
const UserConfigFileName = "config.toml"

// UserConfig represents user-facing configuration in TOML format.
type UserConfig struct {
	// Prompt is the text shown before the query (default: "> ").
	// Overridable per-launch with --prompt and per-reload via IPC.
	Prompt string `toml:"prompt"`

	// Search tunes the remote search modes
	Search SearchSettings `toml:"search"`

	// Clipboard tunes the clipboard history daemon
	Clipboard ClipboardSettings `toml:"clipboard"`

	// Apps tunes the application watch daemon
	Apps AppsSettings `toml:"apps"`

	// Logging controls structured log output
	Logging LoggingSettings `toml:"logging"`
}

// SearchSettings tunes keystroke debouncing and remote registry calls.
type SearchSettings struct {
	// DebounceMs is the quiet period after the last keystroke before a
	// remote search fires (default: 300)
	DebounceMs int `toml:"debounce_ms"`

	// RemoteTimeoutMs bounds each registry request (default: 800)
	RemoteTimeoutMs int `toml:"remote_timeout_ms"`

	// MaxRequestsPerSec rate-limits remote searches across all registries
	// (default: 4)
	MaxRequestsPerSec int `toml:"max_requests_per_sec"`
}

// ClipboardSettings tunes the clipboard history daemon.
type ClipboardSettings struct {
	// PollIntervalMs is how often the clipboard is checked (default: 500)
	PollIntervalMs int `toml:"poll_interval_ms"`

	// MaxHistory bounds the history list; oldest entries are evicted
	// (default: 1000)
	MaxHistory int `toml:"max_history"`
}

// AppsSettings tunes the application watch daemon.
type AppsSettings struct {
	// DebounceMs is the quiet period after a filesystem event before
	// rescanning; bulk installs fire storms of events (default: 500)
	DebounceMs int `toml:"debounce_ms"`

	// ExtraDirs adds application directories beyond the platform defaults
	ExtraDirs []string `toml:"extra_dirs"`
}

// LoggingSettings controls structured log output.
type LoggingSettings struct {
	// Level is "debug", "info", "warn", or "error" (default: info)
	Level string `toml:"level"`

	// Debug forces file logging on
	Debug bool `toml:"debug"`
}

// Defaults fills zero values in place.
func (c *UserConfig) applyDefaults() {
	if c.Prompt == "" {
		c.Prompt = "> "
	}
	if c.Search.DebounceMs <= 0 {
		c.Search.DebounceMs = 300
	}
	if c.Search.RemoteTimeoutMs <= 0 {
		c.Search.RemoteTimeoutMs = 800
	}
	if c.Search.MaxRequestsPerSec <= 0 {
		c.Search.MaxRequestsPerSec = 4
	}
	if c.Clipboard.PollIntervalMs <= 0 {
		c.Clipboard.PollIntervalMs = 500
	}
	if c.Clipboard.MaxHistory <= 0 {
		c.Clipboard.MaxHistory = 1000
	}
	if c.Apps.DebounceMs <= 0 {
		c.Apps.DebounceMs = 500
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Debounce returns the remote search debounce as a duration.
func (s SearchSettings) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// RemoteTimeout returns the registry request timeout as a duration.
func (s SearchSettings) RemoteTimeout() time.Duration {
	return time.Duration(s.RemoteTimeoutMs) * time.Millisecond
}

// PollInterval returns the clipboard poll cadence as a duration.
func (s ClipboardSettings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

// Debounce returns the filesystem event debounce as a duration.
func (s AppsSettings) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// Load reads config.toml from the config directory. A missing file is not
// an error; defaults apply. A commented example is written on first run so
// users can discover the knobs.
func Load() (*UserConfig, error) {
	dir, err := paths.ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	return LoadFrom(filepath.Join(dir, UserConfigFileName))
}

// LoadFrom reads a config file at an explicit path.
func LoadFrom(path string) (*UserConfig, error) {
	var cfg UserConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if writeErr := os.WriteFile(path, []byte(exampleConfigTOML), 0o644); writeErr == nil {
			log.Info("config_example_created", "path", path)
		}
		cfg.applyDefaults()
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

const exampleConfigTOML = `# frisk configuration
# All values shown are the defaults; uncomment to change.

# Text shown before the query.
#prompt = "> "

[search]
# Quiet period after the last keystroke before a remote search fires.
#debounce_ms = 300
# Timeout for each registry request.
#remote_timeout_ms = 800
# Rate limit across all remote registries.
#max_requests_per_sec = 4

[clipboard]
# How often the clipboard is polled for changes.
#poll_interval_ms = 500
# Bounded history size; oldest entries are evicted.
#max_history = 1000

[apps]
# Quiet period after a filesystem event before rescanning applications.
#debounce_ms = 500
# Additional directories to watch beyond the platform defaults.
#extra_dirs = []

[logging]
#level = "info"
#debug = false
`
