package daemon

import (
	"context"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/calrichards/frisk/internal/cache"
	"github.com/calrichards/frisk/internal/catalog"
	"github.com/calrichards/frisk/internal/clipboard"
	"github.com/calrichards/frisk/internal/logging"
)

// maxDisplayWidth bounds clipboard entry display text; the stored
// value keeps the original formatting for pasting.
const maxDisplayWidth = 80

// ClipboardDaemon polls the system clipboard and maintains a bounded
// history in clipboard.bin, newest first.
type ClipboardDaemon struct {
	read       func() (string, error)
	store      *cache.Store
	interval   time.Duration
	maxHistory int

	lastSeen string
	history  []catalog.Item
}

// NewClipboardDaemon creates the clipboard daemon. read overrides the
// system clipboard for tests; pass nil for the real one.
func NewClipboardDaemon(read func() (string, error), store *cache.Store, interval time.Duration, maxHistory int) *ClipboardDaemon {
	if read == nil {
		read = clipboard.Read
	}
	return &ClipboardDaemon{
		read:       read,
		store:      store,
		interval:   interval,
		maxHistory: maxHistory,
	}
}

// Run polls until ctx is canceled. Existing history is loaded first so
// a daemon restart does not wipe it.
func (d *ClipboardDaemon) Run(ctx context.Context) error {
	d.store.Load(cache.ClipboardFile, cache.NoTTL, &d.history)
	if len(d.history) > 0 {
		d.lastSeen = d.history[0].Value
	}
	log.Info("clipboard_daemon_ready", "history", len(d.history), "interval", d.interval)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			content, err := d.read()
			if err != nil {
				log.Debug("clipboard_read_failed", "error", err)
				continue
			}
			if err := d.Observe(content); err != nil {
				log.Warn("clipboard_save_failed", "error", err)
			}
		}
	}
}

// Observe records one clipboard sample: unchanged or blank content is
// ignored, anything else goes to the front of the history and the
// whole list is persisted.
func (d *ClipboardDaemon) Observe(content string) error {
	// Two samples per second would drown the log file; the aggregator
	// emits one summary line per flush window instead.
	logging.Aggregate(logging.CompDaemon, "clipboard_poll")

	if strings.TrimSpace(content) == "" || content == d.lastSeen {
		return nil
	}
	d.lastSeen = content

	display := displayText(content)
	if display == "" {
		return nil
	}

	// Re-copying an entry that is already at the front is a no-op.
	if len(d.history) > 0 && d.history[0].Value == content {
		return nil
	}

	entry := catalog.NewClipboardEntry(display, content)
	d.history = append([]catalog.Item{entry}, d.history...)
	if len(d.history) > d.maxHistory {
		d.history = d.history[:d.maxHistory]
	}

	if err := d.store.Save(cache.ClipboardFile, d.history); err != nil {
		return err
	}
	log.Debug("clipboard_entry_saved", "history", len(d.history))
	return nil
}

// History returns the current in-memory history, newest first.
func (d *ClipboardDaemon) History() []catalog.Item {
	return d.history
}

// displayText collapses all whitespace to single spaces and truncates
// to one list row.
func displayText(content string) string {
	normalized := strings.Join(strings.Fields(content), " ")
	return runewidth.Truncate(normalized, maxDisplayWidth, "...")
}
