package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/calrichards/frisk/internal/catalog"
)

const defaultCratesURL = "https://crates.io/api/v1"

// CratesClient searches crates.io. One page of 100 results sorted by
// relevance is plenty for an interactive picker.
type CratesClient struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewCratesClient creates a crates.io searcher. baseURL overrides the
// public API endpoint; pass "" for the default.
func NewCratesClient(timeout time.Duration, perSec int, baseURL string) *CratesClient {
	if baseURL == "" {
		baseURL = defaultCratesURL
	}
	return &CratesClient{
		client:  newHTTPClient(timeout),
		limiter: newLimiter(perSec),
		baseURL: baseURL,
	}
}

type cratesResponse struct {
	Crates []crateInfo `json:"crates"`
}

type crateInfo struct {
	Name       string `json:"name"`
	MaxVersion string `json:"max_version"`
	Downloads  uint64 `json:"downloads"`
}

// Search queries crates.io and returns items whose value is the crate's
// page URL.
func (c *CratesClient) Search(ctx context.Context, query string) ([]catalog.Item, error) {
	if query == "" {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/crates?page=1&per_page=100&q=%s", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crates.io request: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var parsed cratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode crates.io response: %w", err)
	}

	items := make([]catalog.Item, 0, len(parsed.Crates))
	for _, cr := range parsed.Crates {
		name := fmt.Sprintf("%s v%s (↓ %s)", cr.Name, cr.MaxVersion, formatDownloads(cr.Downloads))
		value := "https://crates.io/crates/" + cr.Name
		items = append(items, catalog.NewRustCrate(name, value))
	}
	log.Debug("crates_search", "query", query, "results", len(items))
	return items, nil
}

// formatDownloads abbreviates a download count with K/M suffixes.
func formatDownloads(n uint64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatUint(n, 10)
	}
}
