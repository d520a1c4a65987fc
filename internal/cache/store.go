// Package cache persists named binary blobs under the platform cache
// directory. Each source daemon owns one cache file; the launcher only
// reads them. Validity is inferred from file modification time — there is
// no stored expiry — so a daemon re-writing a file refreshes it for free.
package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/calrichards/frisk/internal/logging"
	"github.com/calrichards/frisk/internal/paths"
)

var log = logging.ForComponent(logging.CompCache)

// NoTTL disables age checking on Load; the clipboard history never expires.
const NoTTL = time.Duration(0)

// DefaultTTL is how long daemon-written caches stay fresh before the
// launcher treats them as stale.
const DefaultTTL = 24 * time.Hour

// Cache file names, one per source daemon.
const (
	AppsFile      = "apps.bin"
	HomebrewFile  = "homebrew.bin"
	ClipboardFile = "clipboard.bin"
	NixpkgsFile   = "nixpkgs.bin"
)

// Store reads and writes gob-encoded cache files in a single directory.
type Store struct {
	dir string
}

// Open resolves the frisk cache directory (creating it if missing) and
// returns a store over it.
func Open() (*Store, error) {
	dir, err := paths.CacheDir()
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// OpenAt returns a store over an explicit directory. Used by tests and by
// the --source flag, which loads cache-format files from arbitrary paths.
func OpenAt(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory this store reads and writes.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the on-disk path for a cache name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Save gob-encodes v and writes it to dir/name atomically (tmp + rename),
// so the launcher never observes a half-written cache. I/O failures
// propagate to the caller.
func (s *Store) Save(name string, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := atomic.WriteFile(s.Path(name), &buf); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	log.Debug("cache_saved", slog.String("name", name), slog.Int("bytes", buf.Len()))
	return nil
}

// Load decodes dir/name into out and reports whether it was usable.
// A missing file, a file whose age is >= ttl (unless ttl is NoTTL), and a
// payload that fails to decode are all the same non-fatal outcome: false,
// meaning "needs refresh". Corrupt caches are simply overwritten by the
// owning daemon's next run.
func (s *Store) Load(name string, ttl time.Duration, out any) bool {
	return LoadFile(s.Path(name), ttl, out)
}

// LoadFile is Load for an arbitrary path, backing the --source flag.
func LoadFile(path string, ttl time.Duration, out any) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if ttl != NoTTL && time.Since(info.ModTime()) >= ttl {
		log.Debug("cache_expired", slog.String("path", path),
			slog.Duration("age", time.Since(info.ModTime())))
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(out); err != nil {
		// Corrupt or written by an incompatible version; treat as a miss.
		log.Debug("cache_decode_failed", slog.String("path", path),
			slog.String("error", err.Error()))
		return false
	}
	return true
}
