package daemon

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/calrichards/frisk/internal/cache"
	"github.com/calrichards/frisk/internal/catalog"
	"github.com/calrichards/frisk/internal/logging"
	"github.com/calrichards/frisk/internal/platform"
)

// AppScanner enumerates installed applications. Separated from the
// daemon so tests can run the watch loop against a fake.
type AppScanner interface {
	Scan() ([]catalog.Item, error)
}

// NewAppScanner returns the scanner for the current platform.
func NewAppScanner() AppScanner {
	if platform.Detect() == platform.PlatformMacOS {
		return mdfindScanner{}
	}
	return desktopScanner{dirs: platform.ApplicationDirs()}
}

// mdfindScanner asks Spotlight for everything indexed as an
// application. Faster and more complete than walking /Applications.
type mdfindScanner struct{}

func (mdfindScanner) Scan() ([]catalog.Item, error) {
	out, err := exec.Command("mdfind", "kMDItemKind == 'Application'").Output()
	if err != nil {
		return nil, fmt.Errorf("mdfind: %w", err)
	}

	var items []catalog.Item
	for _, line := range strings.Split(string(out), "\n") {
		path := strings.TrimSpace(line)
		if !strings.HasSuffix(path, ".app") {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(path), ".app")
		items = append(items, catalog.NewApplication(name, path))
	}
	return items, nil
}

// desktopScanner walks XDG application directories for .desktop files.
type desktopScanner struct {
	dirs []string
}

func (s desktopScanner) Scan() ([]catalog.Item, error) {
	var items []catalog.Item
	for _, dir := range s.dirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(path, ".desktop") {
				return nil
			}
			if name := desktopEntryName(path); name != "" {
				items = append(items, catalog.NewApplication(name, path))
			}
			return nil
		})
	}
	return items, nil
}

// desktopEntryName pulls the first Name= out of the [Desktop Entry]
// section. Localized Name[xx]= lines are skipped.
func desktopEntryName(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "[") && line != "[Desktop Entry]" {
			break
		}
		if rest, ok := strings.CutPrefix(line, "Name="); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// AppsDaemon keeps apps.bin current: scan once at startup, then watch
// the application directories and rescan after events settle.
type AppsDaemon struct {
	scanner  AppScanner
	store    *cache.Store
	dirs     []string
	debounce time.Duration
}

// NewAppsDaemon creates the apps daemon. extraDirs are watched in
// addition to the platform defaults.
func NewAppsDaemon(scanner AppScanner, store *cache.Store, debounce time.Duration, extraDirs []string) *AppsDaemon {
	dirs := append(platform.ApplicationDirs(), extraDirs...)
	return &AppsDaemon{
		scanner:  scanner,
		store:    store,
		dirs:     dirs,
		debounce: debounce,
	}
}

// Run scans, saves, and then blocks watching for changes until ctx is
// canceled. The initial scan failing is fatal; a failed rescan keeps
// the previous cache and the watch alive.
func (d *AppsDaemon) Run(ctx context.Context) error {
	if err := d.rescan(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	watching := 0
	for _, dir := range d.dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if warn := platform.CheckFsnotifySupport(dir); warn != "" {
			log.Warn("apps_watch_degraded", "dir", dir, "reason", warn)
		}
		if err := watcher.Add(dir); err != nil {
			log.Warn("apps_watch_failed", "dir", dir, "error", err)
			continue
		}
		watching++
	}
	if watching == 0 {
		return fmt.Errorf("no application directories to watch")
	}
	log.Info("apps_daemon_ready", "dirs", watching, "debounce", d.debounce)

	// Events fan into a bounded channel; a full channel means a rescan
	// is already pending, so dropping is harmless.
	kicks := make(chan struct{}, 64)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			// Bulk installs fire hundreds of events; summarize instead
			// of logging each one.
			logging.Aggregate(logging.CompDaemon, "apps_fs_event",
				slog.String("op", event.Op.String()), slog.String("name", event.Name))
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(d.debounce, func() {
				select {
				case kicks <- struct{}{}:
				default:
					log.Warn("apps_rescan_queue_full")
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("apps_watch_error", "error", err)

		case <-kicks:
			if err := d.rescan(); err != nil {
				log.Error("apps_rescan_failed", "error", err)
			}
		}
	}
}

func (d *AppsDaemon) rescan() error {
	items, err := d.scanner.Scan()
	if err != nil {
		return fmt.Errorf("scan applications: %w", err)
	}
	if err := d.store.Save(cache.AppsFile, items); err != nil {
		return err
	}
	log.Info("apps_saved", "count", len(items))
	return nil
}
