package launcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calrichards/frisk/internal/cache"
	"github.com/calrichards/frisk/internal/catalog"
	"github.com/calrichards/frisk/internal/config"
	"github.com/calrichards/frisk/internal/ipc"
	"github.com/calrichards/frisk/internal/registry"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeSearcher struct {
	queries []string
	items   []catalog.Item
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]catalog.Item, error) {
	f.queries = append(f.queries, query)
	return f.items, f.err
}

func testSession(t *testing.T, apps []catalog.Item, searchers map[catalog.Mode]registry.Searcher) *Session {
	t.Helper()
	dir := t.TempDir()
	store, err := cache.OpenAt(dir)
	require.NoError(t, err)
	if apps != nil {
		require.NoError(t, store.Save(cache.AppsFile, apps))
	}

	cfg, err := config.LoadFrom(dir + "/config.toml")
	require.NoError(t, err)

	loader := NewLoader(store, dir+"/commands.toml")
	s := NewSession(loader, cfg, searchers)
	s.SetSources(Sources{Apps: true})
	s.Start()
	return s
}

func TestDebounceFiresOnceForFinalQuery(t *testing.T) {
	searcher := &fakeSearcher{items: []catalog.Item{catalog.NewNixPackage("ripgrep v14", "ripgrep")}}
	s := testSession(t, nil, map[catalog.Mode]registry.Searcher{
		catalog.ModeNixpkgsSearch: searcher,
	})
	clk := &fakeClock{t: time.Now()}
	s.SetClock(clk.Now)
	s.enterMode(catalog.ModeNixpkgsSearch)

	// A burst of edits inside the debounce window.
	for _, q := range []string{"r", "ri", "rip", "ripg"} {
		s.SetQuery(q)
		clk.Advance(50 * time.Millisecond)
		s.Tick()
	}
	assert.Empty(t, searcher.queries)
	assert.True(t, s.Pending())

	// Quiet period elapses.
	clk.Advance(300 * time.Millisecond)
	s.Tick()

	require.Equal(t, []string{"ripg"}, searcher.queries)
	assert.False(t, s.Pending())
	require.Len(t, s.Results(), 1)
	assert.Equal(t, "ripgrep v14", s.Results()[0].Name)

	// Further ticks with no edits do not re-search.
	s.Tick()
	assert.Equal(t, []string{"ripg"}, searcher.queries)
}

func TestRemoteFailureKeepsStaleResults(t *testing.T) {
	searcher := &fakeSearcher{items: []catalog.Item{catalog.NewRustCrate("serde v1 (↓ 500.0M)", "https://crates.io/crates/serde")}}
	s := testSession(t, nil, map[catalog.Mode]registry.Searcher{
		catalog.ModeCratesSearch: searcher,
	})
	clk := &fakeClock{t: time.Now()}
	s.SetClock(clk.Now)
	s.enterMode(catalog.ModeCratesSearch)

	s.SetQuery("serde")
	clk.Advance(time.Second)
	s.Tick()
	require.Len(t, s.Results(), 1)

	searcher.err = errors.New("registry unreachable")
	s.SetQuery("serde_json")
	clk.Advance(time.Second)
	s.Tick()

	assert.False(t, s.Pending())
	require.Len(t, s.Results(), 1)
	assert.Equal(t, "serde v1 (↓ 500.0M)", s.Results()[0].Name)

	// Next edit retries.
	searcher.err = nil
	s.SetQuery("tokio")
	clk.Advance(time.Second)
	s.Tick()
	assert.Equal(t, []string{"serde", "serde_json", "tokio"}, searcher.queries)
}

func TestCalculatorOverlay(t *testing.T) {
	s := testSession(t, []catalog.Item{catalog.NewApplication("Calendar", "/Applications/Calendar.app")}, nil)

	s.SetQuery("2+2")
	require.NotEmpty(t, s.Results())
	first := s.Results()[0]
	assert.Equal(t, catalog.KindCalculatorResult, first.Kind)
	assert.Equal(t, "4", first.Value)

	// A bare number echoes itself and is suppressed.
	s.SetQuery("42")
	for _, item := range s.Results() {
		assert.NotEqual(t, catalog.KindCalculatorResult, item.Kind)
	}
}

func TestEmptyQueryShowsFullCatalog(t *testing.T) {
	apps := []catalog.Item{
		catalog.NewApplication("Firefox", "/Applications/Firefox.app"),
		catalog.NewApplication("Zed", "/Applications/Zed.app"),
	}
	s := testSession(t, apps, nil)

	// Two apps plus the four mode-switch entries.
	assert.Len(t, s.Results(), 6)
	assert.Equal(t, "Firefox", s.Results()[0].Name)
}

func TestModeSwitchViaExecute(t *testing.T) {
	s := testSession(t, nil, map[catalog.Mode]registry.Searcher{
		catalog.ModeNixpkgsSearch: &fakeSearcher{},
	})

	s.SetQuery("nixpkgs")
	var idx = -1
	for i, item := range s.Results() {
		if item.Kind == catalog.KindModeSwitch && item.Mode == catalog.ModeNixpkgsSearch {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0, "mode switch entry should match")
	for s.Cursor() < idx {
		s.CursorDown()
	}

	exit, err := s.Execute()
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, catalog.ModeNixpkgsSearch, s.Mode())
	assert.Equal(t, "", s.Query())
	assert.Empty(t, s.Results())
}

func TestReloadResetsState(t *testing.T) {
	searcher := &fakeSearcher{}
	s := testSession(t, []catalog.Item{catalog.NewApplication("Firefox", "/Applications/Firefox.app")},
		map[catalog.Mode]registry.Searcher{catalog.ModeCratesSearch: searcher})
	s.enterMode(catalog.ModeCratesSearch)
	s.SetQuery("serde")

	prompt := ">>> "
	s.Reload(ipc.ReloadMessage{Prompt: &prompt})

	assert.Equal(t, catalog.ModeNormal, s.Mode())
	assert.Equal(t, "", s.Query())
	assert.Equal(t, 0, s.Cursor())
	assert.Equal(t, ">>> ", s.Prompt())
	assert.False(t, s.Pending())
	assert.NotEmpty(t, s.Results())
}

func TestReloadFromChannelOnTick(t *testing.T) {
	s := testSession(t, nil, nil)
	ch := make(chan ipc.ReloadMessage, 1)
	s.AttachReloads(ch)

	prompt := "$ "
	ch <- ipc.ReloadMessage{Prompt: &prompt}
	s.Tick()
	assert.Equal(t, "$ ", s.Prompt())
}

func TestSourcesMerge(t *testing.T) {
	cur := DefaultSources()

	// Untargeted reload keeps the current selection.
	next := cur.Merge(ipc.ReloadMessage{})
	assert.Equal(t, cur, next)

	// Targeted reload replaces it.
	next = cur.Merge(ipc.ReloadMessage{Clipboard: true, Sources: []string{"extra.bin"}})
	assert.False(t, next.Apps)
	assert.True(t, next.Clipboard)
	assert.Equal(t, []string{"extra.bin"}, next.Files)
}
