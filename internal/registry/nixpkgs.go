package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/time/rate"

	"github.com/calrichards/frisk/internal/catalog"
)

const (
	defaultNixVersionURL = "https://raw.githubusercontent.com/NixOS/nixos-search/main/version.nix"
	defaultNixBackend    = "https://search.nixos.org/backend"

	// Read-only credentials published in the nixos-search frontend; the
	// backend rejects anonymous requests.
	nixAuthHeader = "Basic YVdWU0FMWHBadjpYOGdQSG56TDUyd0ZFZWt1eHNmUTljU2g="

	// indexBatchSize is the page size for the full catalog fetch.
	indexBatchSize = 10000
)

// NixpkgsClient queries the nixpkgs Elasticsearch backend. The index
// name embeds a frontend version that changes over time, so the search
// URL is resolved from version.nix once and memoized for the process.
type NixpkgsClient struct {
	client     *http.Client
	limiter    *rate.Limiter
	versionURL string
	backend    string

	mu        sync.Mutex
	searchURL string
}

// NewNixpkgsClient creates a nixpkgs searcher. versionURL and backend
// override the public endpoints; pass "" for the defaults.
func NewNixpkgsClient(timeout time.Duration, perSec int, versionURL, backend string) *NixpkgsClient {
	if versionURL == "" {
		versionURL = defaultNixVersionURL
	}
	if backend == "" {
		backend = defaultNixBackend
	}
	return &NixpkgsClient{
		client:     newHTTPClient(timeout),
		limiter:    newLimiter(perSec),
		versionURL: versionURL,
		backend:    backend,
	}
}

type nixSearchResponse struct {
	Hits struct {
		Hits []nixHit `json:"hits"`
	} `json:"hits"`
}

type nixHit struct {
	Source nixPackage        `json:"_source"`
	Sort   []json.RawMessage `json:"sort"`
}

type nixPackage struct {
	AttrName    string  `json:"package_attr_name"`
	PName       string  `json:"package_pname"`
	PVersion    string  `json:"package_pversion"`
	Description *string `json:"package_description"`
}

// resolveSearchURL fetches version.nix, pulls the frontend version out
// of the line `frontend = "44";`, and builds the backend search URL.
func (c *NixpkgsClient) resolveSearchURL(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.searchURL != "" {
		return c.searchURL, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.versionURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch version.nix: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return "", err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	frontend := ""
	for _, line := range strings.Split(string(body), "\n") {
		if !strings.Contains(line, "frontend") {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) >= 2 {
			frontend = parts[1]
			break
		}
	}
	if frontend == "" {
		return "", fmt.Errorf("no frontend version in %s", c.versionURL)
	}

	c.searchURL = fmt.Sprintf("%s/latest-%s-nixos-unstable/_search", c.backend, frontend)
	log.Debug("nixpkgs_search_url_resolved", "url", c.searchURL)
	return c.searchURL, nil
}

// boosted field list lifted from the official nixos-search frontend so
// interactive results rank the same way the website does.
var nixQueryFields = []string{
	"package_attr_name^9",
	"package_attr_name.edge^9",
	"package_pname^6",
	"package_pname.edge^6",
	"package_attr_name_query^4",
	"package_attr_name_query.edge^4",
	"package_description^1.3",
	"package_description.edge^1.3",
	"package_longDescription^1",
	"package_longDescription.edge^1",
	"flake_name^0.5",
	"flake_name.edge^0.5",
	"package_attr_name_reverse^7.2",
	"package_attr_name_reverse.edge^7.2",
	"package_pname_reverse^4.8",
	"package_pname_reverse.edge^4.8",
	"package_attr_name_query_reverse^3.2",
	"package_attr_name_query_reverse.edge^3.2",
	"package_description_reverse^1.04",
	"package_description_reverse.edge^1.04",
	"package_longDescription_reverse^0.8",
	"package_longDescription_reverse.edge^0.8",
	"flake_name_reverse^0.4",
	"flake_name_reverse.edge^0.4",
}

// Search runs the interactive relevance query: a dis_max over the
// boosted fields, the reversed query, and a wildcard on the attribute
// name, capped at 50 hits.
func (c *NixpkgsClient) Search(ctx context.Context, query string) ([]catalog.Item, error) {
	if query == "" {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	searchURL, err := c.resolveSearchURL(ctx)
	if err != nil {
		return nil, err
	}

	reversed := reverseString(query)
	multiMatch := func(q string) map[string]any {
		return map[string]any{
			"multi_match": map[string]any{
				"type":                                "cross_fields",
				"query":                               q,
				"analyzer":                            "whitespace",
				"auto_generate_synonyms_phrase_query": false,
				"operator":                            "and",
				"fields":                              nixQueryFields,
			},
		}
	}
	body := map[string]any{
		"size": 50,
		"sort": []any{
			map[string]any{"_score": "desc"},
			map[string]any{"package_attr_name": "desc"},
			map[string]any{"package_pversion": "desc"},
		},
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"type": map[string]any{"value": "package"}}},
				},
				"must": []any{
					map[string]any{
						"dis_max": map[string]any{
							"tie_breaker": 0.7,
							"queries": []any{
								multiMatch(query),
								multiMatch(reversed),
								map[string]any{
									"wildcard": map[string]any{
										"package_attr_name": map[string]any{"value": "*" + query + "*"},
									},
								},
							},
						},
					},
				},
			},
		},
	}

	parsed, err := c.post(ctx, searchURL, body)
	if err != nil {
		return nil, err
	}

	items := make([]catalog.Item, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		pkg := hit.Source
		display := pkg.AttrName
		if pkg.Description != nil && *pkg.Description != "" {
			desc := runewidth.Truncate(*pkg.Description, 80, "...")
			display = pkg.AttrName + " - " + desc
		}
		items = append(items, catalog.NewNixPackage(display, pkg.AttrName))
	}
	log.Debug("nixpkgs_search", "query", query, "results", len(items))
	return items, nil
}

// Index fetches the entire package catalog in search_after pages for
// the one-shot daemon. Display is "pname vVersion"; the attribute name
// is what selection copies.
func (c *NixpkgsClient) Index(ctx context.Context) ([]catalog.Item, error) {
	searchURL, err := c.resolveSearchURL(ctx)
	if err != nil {
		return nil, err
	}

	var all []catalog.Item
	var searchAfter []json.RawMessage
	for batch := 1; ; batch++ {
		body := map[string]any{
			"size": indexBatchSize,
			"sort": []any{map[string]any{"package_attr_name": "asc"}},
			"query": map[string]any{
				"bool": map[string]any{
					"filter": []any{
						map[string]any{"term": map[string]any{"type": map[string]any{"value": "package"}}},
					},
				},
			},
		}
		if searchAfter != nil {
			body["search_after"] = searchAfter
		}

		parsed, err := c.post(ctx, searchURL, body)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", batch, err)
		}

		hits := parsed.Hits.Hits
		for _, hit := range hits {
			pkg := hit.Source
			display := pkg.PName
			if pkg.PVersion != "" {
				display = fmt.Sprintf("%s v%s", pkg.PName, pkg.PVersion)
			}
			all = append(all, catalog.NewNixPackage(display, pkg.AttrName))
		}
		log.Debug("nixpkgs_index_batch", "batch", batch, "hits", len(hits), "total", len(all))

		if len(hits) < indexBatchSize {
			break
		}
		searchAfter = hits[len(hits)-1].Sort
		if searchAfter == nil {
			break
		}
	}
	return all, nil
}

func (c *NixpkgsClient) post(ctx context.Context, url string, body map[string]any) (*nixSearchResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", nixAuthHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nixpkgs request: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var parsed nixSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode nixpkgs response: %w", err)
	}
	return &parsed, nil
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
