// Package config loads frisk's TOML configuration: user preferences in
// config.toml and custom commands in commands.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/calrichards/frisk/internal/catalog"
	"github.com/calrichards/frisk/internal/logging"
	"github.com/calrichards/frisk/internal/paths"
)

var log = logging.ForComponent(logging.CompConfig)

// CommandsFileName is the TOML file holding custom commands.
const CommandsFileName = "commands.toml"

// CommandsConfig is the set of user-defined commands shown in the Normal
// catalog.
type CommandsConfig struct {
	Command []CustomCommand `toml:"command"`
}

// CustomCommand is one [[command]] entry. Action runs via sh -c.
type CustomCommand struct {
	Name   string `toml:"name"`
	Action string `toml:"action"`
}

// LoadCommands reads commands.toml from the config directory, writing the
// default template first if the file does not exist.
func LoadCommands() (*CommandsConfig, error) {
	dir, err := paths.ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	return LoadCommandsFrom(filepath.Join(dir, CommandsFileName))
}

// LoadCommandsFrom reads a commands file at an explicit path.
func LoadCommandsFrom(path string) (*CommandsConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create config dir: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultCommandsTOML), 0o644); err != nil {
			return nil, fmt.Errorf("write default commands: %w", err)
		}
		log.Info("commands_template_created", "path", path)
	}

	var cfg CommandsConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ToItems converts the commands into catalog items.
func (c *CommandsConfig) ToItems() []catalog.Item {
	items := make([]catalog.Item, 0, len(c.Command))
	for _, cmd := range c.Command {
		items = append(items, catalog.NewSystemCommand(cmd.Name, cmd.Action))
	}
	return items
}

const defaultCommandsTOML = `# Custom commands for frisk
# Each [[command]] entry appears in the launcher; action runs via sh -c.

[[command]]
name = "Empty Trash"
action = "osascript -e 'tell application \"Finder\" to empty trash'"

[[command]]
name = "Show Trash"
action = "osascript -e 'tell application \"Finder\" to open trash' && open -a finder"

[[command]]
name = "Restart"
action = "osascript -e 'tell application \"System Events\" to restart'"

[[command]]
name = "Shut Down"
action = "osascript -e 'tell application \"System Events\" to shut down'"

[[command]]
name = "Sleep"
action = "osascript -e 'tell application \"System Events\" to sleep'"

[[command]]
name = "Lock Screen"
action = "pmset displaysleepnow"
`
