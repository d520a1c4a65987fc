package launcher

import (
	"time"

	"github.com/calrichards/frisk/internal/cache"
	"github.com/calrichards/frisk/internal/catalog"
	"github.com/calrichards/frisk/internal/config"
	"github.com/calrichards/frisk/internal/ipc"
)

// Sources selects what goes into a Normal-mode catalog.
type Sources struct {
	Apps      bool
	Homebrew  bool
	Clipboard bool
	Commands  bool
	Nixpkgs   bool

	// Files are extra cache-format files loaded verbatim.
	Files []string
}

// DefaultSources is what a flagless launch shows: applications and
// custom commands. Registry caches are opt-in because they hold tens
// of thousands of entries.
func DefaultSources() Sources {
	return Sources{Apps: true, Commands: true}
}

// Merge applies a reload message: a targeted message replaces the
// source selection, an untargeted one keeps the current selection.
// Extra files always come from the message.
func (s Sources) Merge(msg ipc.ReloadMessage) Sources {
	next := s
	if msg.Targeted() {
		next = Sources{
			Apps:      msg.Apps,
			Homebrew:  msg.Homebrew,
			Clipboard: msg.Clipboard,
			Commands:  msg.Commands,
			Nixpkgs:   msg.Nixpkgs,
		}
	}
	if len(msg.Sources) > 0 {
		next.Files = msg.Sources
	}
	return next
}

// Loader assembles catalogs from daemon caches and config files.
type Loader struct {
	store        *cache.Store
	commandsPath string
}

// NewLoader creates a loader over the given store. commandsPath
// overrides the commands.toml location; pass "" for the default.
func NewLoader(store *cache.Store, commandsPath string) *Loader {
	return &Loader{store: store, commandsPath: commandsPath}
}

// Load builds a Normal-mode catalog. A missing or stale cache
// contributes nothing; the launcher degrades rather than fails. The
// mode-switch entries are always appended last so they rank below
// direct matches.
func (l *Loader) Load(src Sources) *catalog.Catalog {
	c := catalog.New()

	if src.Apps {
		l.appendCache(c, cache.AppsFile, cache.DefaultTTL)
	}
	if src.Commands {
		l.appendCommands(c)
	}
	if src.Homebrew {
		l.appendCache(c, cache.HomebrewFile, cache.DefaultTTL)
	}
	if src.Nixpkgs {
		l.appendCache(c, cache.NixpkgsFile, cache.DefaultTTL)
	}
	if src.Clipboard {
		l.appendCache(c, cache.ClipboardFile, cache.NoTTL)
	}
	for _, path := range src.Files {
		var items []catalog.Item
		if cache.LoadFile(path, cache.NoTTL, &items) {
			c.Append(items)
		} else {
			log.Warn("source_file_unusable", "path", path)
		}
	}

	c.Append(modeSwitchItems())
	return c
}

// LoadClipboard builds the ClipboardHistory-mode catalog.
func (l *Loader) LoadClipboard() *catalog.Catalog {
	c := catalog.New()
	l.appendCache(c, cache.ClipboardFile, cache.NoTTL)
	return c
}

func (l *Loader) appendCache(c *catalog.Catalog, name string, ttl time.Duration) {
	var items []catalog.Item
	if !l.store.Load(name, ttl, &items) {
		log.Debug("cache_unavailable", "name", name)
		return
	}
	c.Append(items)
}

func (l *Loader) appendCommands(c *catalog.Catalog) {
	var cmds *config.CommandsConfig
	var err error
	if l.commandsPath != "" {
		cmds, err = config.LoadCommandsFrom(l.commandsPath)
	} else {
		cmds, err = config.LoadCommands()
	}
	if err != nil {
		log.Warn("commands_load_failed", "error", err)
		return
	}
	c.Append(cmds.ToItems())
}

func modeSwitchItems() []catalog.Item {
	return []catalog.Item{
		catalog.NewModeSwitch("Clipboard History", catalog.ModeClipboardHistory),
		catalog.NewModeSwitch("Search Nixpkgs", catalog.ModeNixpkgsSearch),
		catalog.NewModeSwitch("Search Crates", catalog.ModeCratesSearch),
		catalog.NewModeSwitch("Search Homebrew", catalog.ModeHomebrewSearch),
	}
}
