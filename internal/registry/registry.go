// Package registry talks to remote package indexes: crates.io, the
// nixpkgs Elasticsearch backend, and the Homebrew formulae API. The
// interactive clients back the remote search modes; the index fetchers
// back the one-shot daemons.
package registry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/calrichards/frisk/internal/catalog"
	"github.com/calrichards/frisk/internal/logging"
)

var log = logging.ForComponent(logging.CompRegistry)

const userAgent = "frisk/0.1.0"

// Searcher is a blocking remote query for one search mode. The caller
// owns the deadline; implementations must honor ctx cancellation.
type Searcher interface {
	Search(ctx context.Context, query string) ([]catalog.Item, error)
}

// newHTTPClient builds the client used for registry calls. The client
// timeout is a backstop; per-request deadlines come from the context.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// newLimiter rate-limits interactive searches. Debouncing already
// spaces requests out; the limiter guards against tick-loop bugs
// hammering a public API.
func newLimiter(perSec int) *rate.Limiter {
	if perSec <= 0 {
		perSec = 4
	}
	return rate.NewLimiter(rate.Limit(perSec), perSec)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned %s", resp.Request.URL.Host, resp.Status)
	}
	return nil
}
