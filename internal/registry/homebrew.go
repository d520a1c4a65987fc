package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/calrichards/frisk/internal/cache"
	"github.com/calrichards/frisk/internal/catalog"
)

const (
	defaultBrewURL = "https://formulae.brew.sh/api"

	// brewDatasetCache holds the raw package list, separate from the
	// item cache the daemon writes, so interactive search and the
	// daemon share one download.
	brewDatasetCache = "homebrew.cache"

	// BrewDatasetTTL is how long the downloaded formula/cask lists stay
	// valid. The upstream API regenerates daily.
	BrewDatasetTTL = 24 * time.Hour
)

// BrewPackage is one formula or cask from the Homebrew API.
type BrewPackage struct {
	Name     string
	Token    string
	Version  string
	Cask     bool
	Homepage string
}

// BrewDataset serves Homebrew searches from a locally cached copy of
// the full formula and cask lists. Homebrew has no search endpoint, so
// the whole dataset is downloaded once and filtered in memory.
type BrewDataset struct {
	client  *http.Client
	store   *cache.Store
	baseURL string
	group   singleflight.Group
}

// NewBrewDataset creates a dataset over the given cache store. baseURL
// overrides the formulae.brew.sh API; pass "" for the default.
func NewBrewDataset(store *cache.Store, timeout time.Duration, baseURL string) *BrewDataset {
	if baseURL == "" {
		baseURL = defaultBrewURL
	}
	return &BrewDataset{
		client:  newHTTPClient(timeout),
		store:   store,
		baseURL: baseURL,
	}
}

type formulaInfo struct {
	Name     string `json:"name"`
	Versions struct {
		Stable string `json:"stable"`
	} `json:"versions"`
	Homepage string `json:"homepage"`
}

type caskInfo struct {
	Token    string   `json:"token"`
	Name     []string `json:"name"`
	Version  string   `json:"version"`
	Homepage string   `json:"homepage"`
}

// Packages returns the dataset, downloading it when the cached copy is
// missing or older than a day. Concurrent callers share one download.
func (d *BrewDataset) Packages(ctx context.Context) ([]BrewPackage, error) {
	var cached []BrewPackage
	if d.store.Load(brewDatasetCache, BrewDatasetTTL, &cached) {
		return cached, nil
	}

	v, err, _ := d.group.Do(brewDatasetCache, func() (any, error) {
		log.Info("homebrew_dataset_download", "url", d.baseURL)
		pkgs, err := d.download(ctx)
		if err != nil {
			return nil, err
		}
		if err := d.store.Save(brewDatasetCache, pkgs); err != nil {
			log.Warn("homebrew_dataset_save_failed", "error", err)
		}
		return pkgs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]BrewPackage), nil
}

// Search filters the dataset by case-insensitive substring on the
// package name. Relevance ranking is pointless here: names are short
// and the full list is already local.
func (d *BrewDataset) Search(ctx context.Context, query string) ([]catalog.Item, error) {
	if query == "" {
		return nil, nil
	}
	pkgs, err := d.Packages(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var items []catalog.Item
	for _, pkg := range pkgs {
		if strings.Contains(strings.ToLower(pkg.Name), needle) {
			items = append(items, pkg.Item())
		}
	}
	log.Debug("homebrew_search", "query", query, "results", len(items))
	return items, nil
}

// Items converts the full dataset to catalog items for the daemon.
func (d *BrewDataset) Items(ctx context.Context) ([]catalog.Item, error) {
	pkgs, err := d.Packages(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]catalog.Item, 0, len(pkgs))
	for _, pkg := range pkgs {
		items = append(items, pkg.Item())
	}
	return items, nil
}

// Item renders the package as a catalog entry. Display carries the
// version and a cask marker; value is the homepage with a
// formulae.brew.sh fallback.
func (p BrewPackage) Item() catalog.Item {
	display := p.Name
	if p.Cask {
		display += " (cask)"
	}
	if p.Version != "" {
		display += " v" + p.Version
	}

	url := p.Homepage
	if url == "" {
		if p.Cask {
			url = "https://formulae.brew.sh/cask/" + p.Token
		} else {
			url = "https://formulae.brew.sh/formula/" + p.Name
		}
	}
	return catalog.NewHomebrewPackage(display, url)
}

func (d *BrewDataset) download(ctx context.Context) ([]BrewPackage, error) {
	var packages []BrewPackage

	var formulae []formulaInfo
	if err := d.getJSON(ctx, d.baseURL+"/formula.json", &formulae); err != nil {
		return nil, fmt.Errorf("fetch formulae: %w", err)
	}
	for _, f := range formulae {
		packages = append(packages, BrewPackage{
			Name:     f.Name,
			Version:  f.Versions.Stable,
			Homepage: f.Homepage,
		})
	}

	var casks []caskInfo
	if err := d.getJSON(ctx, d.baseURL+"/cask.json", &casks); err != nil {
		return nil, fmt.Errorf("fetch casks: %w", err)
	}
	for _, c := range casks {
		name := c.Token
		if len(c.Name) > 0 {
			name = c.Name[0]
		}
		packages = append(packages, BrewPackage{
			Name:     name,
			Token:    c.Token,
			Version:  c.Version,
			Cask:     true,
			Homepage: c.Homepage,
		})
	}

	log.Info("homebrew_dataset_downloaded", "packages", len(packages))
	return packages, nil
}

func (d *BrewDataset) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
