package daemon

import (
	"context"

	"github.com/calrichards/frisk/internal/cache"
	"github.com/calrichards/frisk/internal/catalog"
	"github.com/calrichards/frisk/internal/registry"
)

// ItemSource produces the full item list for one registry.
type ItemSource interface {
	Items(ctx context.Context) ([]catalog.Item, error)
}

// nixpkgsSource adapts the index fetch to ItemSource.
type nixpkgsSource struct {
	client *registry.NixpkgsClient
}

func (s nixpkgsSource) Items(ctx context.Context) ([]catalog.Item, error) {
	return s.client.Index(ctx)
}

// RefreshDaemon is a one-shot cache refresh: fetch everything, write
// one file, exit. A scheduler (launchd, systemd timers) provides the
// cadence. Any failure exits non-zero and leaves the old cache alone.
type RefreshDaemon struct {
	name   string
	file   string
	source ItemSource
	store  *cache.Store
}

// NewHomebrewDaemon refreshes homebrew.bin from the formulae API.
func NewHomebrewDaemon(dataset *registry.BrewDataset, store *cache.Store) *RefreshDaemon {
	return &RefreshDaemon{name: "homebrew", file: cache.HomebrewFile, source: dataset, store: store}
}

// NewNixpkgsDaemon refreshes nixpkgs.bin from the full package index.
func NewNixpkgsDaemon(client *registry.NixpkgsClient, store *cache.Store) *RefreshDaemon {
	return &RefreshDaemon{name: "nixpkgs", file: cache.NixpkgsFile, source: nixpkgsSource{client}, store: store}
}

// Run fetches and saves once.
func (d *RefreshDaemon) Run(ctx context.Context) error {
	log.Info("refresh_start", "daemon", d.name)
	items, err := d.source.Items(ctx)
	if err != nil {
		log.Error("refresh_fetch_failed", "daemon", d.name, "error", err)
		return err
	}
	if err := d.store.Save(d.file, items); err != nil {
		log.Error("refresh_save_failed", "daemon", d.name, "error", err)
		return err
	}
	log.Info("refresh_done", "daemon", d.name, "items", len(items))
	return nil
}
