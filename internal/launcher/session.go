// Package launcher owns the primary process state: the active catalog,
// the query, the search mode, and reload handling. Everything here runs
// on the main loop; the IPC listener and daemons only talk to it
// through channels and cache files.
package launcher

import (
	"context"
	"time"

	"github.com/calrichards/frisk/internal/calc"
	"github.com/calrichards/frisk/internal/catalog"
	"github.com/calrichards/frisk/internal/config"
	"github.com/calrichards/frisk/internal/ipc"
	"github.com/calrichards/frisk/internal/logging"
	"github.com/calrichards/frisk/internal/registry"
)

var log = logging.ForComponent(logging.CompLauncher)

// remoteState tracks keystroke debouncing for one remote search mode.
// Debounce is by timestamp comparison on the tick, not a timer, so a
// burst of edits costs nothing until the quiet period elapses.
type remoteState struct {
	lastKeystroke time.Time
	lastSearched  string
	pending       bool
}

// Session is the launcher's mutable state. Not safe for concurrent
// use: the main loop owns it exclusively.
type Session struct {
	loader    *Loader
	cfg       *config.UserConfig
	sources   Sources
	prompt    string
	calc      *calc.Calculator
	executor  *Executor
	searchers map[catalog.Mode]registry.Searcher

	mode    catalog.Mode
	cat     *catalog.Catalog
	results []catalog.Item
	query   string
	cursor  int
	remote  remoteState

	reloads <-chan ipc.ReloadMessage
	now     func() time.Time
}

// NewSession creates a session. searchers maps each remote mode to its
// registry client; a mode with no searcher shows an empty catalog.
func NewSession(loader *Loader, cfg *config.UserConfig, searchers map[catalog.Mode]registry.Searcher) *Session {
	return &Session{
		loader:    loader,
		cfg:       cfg,
		sources:   DefaultSources(),
		prompt:    cfg.Prompt,
		calc:      calc.New(),
		executor:  NewExecutor(),
		searchers: searchers,
		mode:      catalog.ModeNormal,
		now:       time.Now,
	}
}

// SetSources overrides the initial source selection (from CLI flags).
// Call before Start.
func (s *Session) SetSources(src Sources) { s.sources = src }

// SetPrompt overrides the prompt for this run.
func (s *Session) SetPrompt(p string) { s.prompt = p }

// AttachReloads wires the IPC reload channel, drained on every tick.
func (s *Session) AttachReloads(ch <-chan ipc.ReloadMessage) { s.reloads = ch }

// SetClock replaces the time source for debounce tests.
func (s *Session) SetClock(now func() time.Time) { s.now = now }

// Executor returns the item executor, exposed so tests can stub the
// process runner and clipboard.
func (s *Session) Executor() *Executor { return s.executor }

// Start builds the initial catalog.
func (s *Session) Start() {
	s.cat = s.loader.Load(s.sources)
	s.refreshResults()
	log.Info("session_started", "items", s.cat.Len(), "prompt", s.prompt)
}

// Prompt returns the current prompt text.
func (s *Session) Prompt() string { return s.prompt }

// Mode returns the active search mode.
func (s *Session) Mode() catalog.Mode { return s.mode }

// Query returns the current query text.
func (s *Session) Query() string { return s.query }

// Results returns the current result list, best match first.
func (s *Session) Results() []catalog.Item { return s.results }

// Cursor returns the selected index into Results.
func (s *Session) Cursor() int { return s.cursor }

// Pending reports whether a remote search is owed but has not fired
// yet. The renderer shows a spinner instead of "no results" while
// this is true.
func (s *Session) Pending() bool { return s.remote.pending }

// SetQuery replaces the query. In local modes results update
// immediately; in remote modes the keystroke only arms the debounce.
func (s *Session) SetQuery(q string) {
	if q == s.query {
		return
	}
	s.query = q
	s.cursor = 0
	if _, remote := s.searchers[s.mode]; remote {
		s.remote.lastKeystroke = s.now()
		s.remote.pending = true
		return
	}
	s.refreshResults()
}

// CursorUp moves the selection toward the best match.
func (s *Session) CursorUp() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// CursorDown moves the selection away from the best match.
func (s *Session) CursorDown() {
	if s.cursor < len(s.results)-1 {
		s.cursor++
	}
}

// Selected returns the item under the cursor.
func (s *Session) Selected() (catalog.Item, bool) {
	if s.cursor < 0 || s.cursor >= len(s.results) {
		return catalog.Item{}, false
	}
	return s.results[s.cursor], true
}

// Tick runs once per redraw: drain pending reloads, then fire a
// remote search if the debounce window has closed.
func (s *Session) Tick() {
	s.drainReloads()
	s.tickRemote()
}

// Execute acts on the selected item. Mode switches are handled here;
// everything else goes to the executor. exit reports whether the
// launcher should close afterwards.
func (s *Session) Execute() (exit bool, err error) {
	item, ok := s.Selected()
	if !ok {
		return false, nil
	}
	if item.Kind == catalog.KindModeSwitch {
		s.enterMode(item.Mode)
		return false, nil
	}
	return s.executor.Execute(item)
}

// Reload rebuilds the catalog per the message: query and cursor are
// cleared, the prompt override applies, and the mode always resets to
// Normal.
func (s *Session) Reload(msg ipc.ReloadMessage) {
	s.sources = s.sources.Merge(msg)
	if msg.Prompt != nil {
		s.prompt = *msg.Prompt
	}
	s.mode = catalog.ModeNormal
	s.query = ""
	s.cursor = 0
	s.remote = remoteState{}
	s.cat = s.loader.Load(s.sources)
	s.refreshResults()
	log.Info("session_reloaded", "items", s.cat.Len(), "targeted", msg.Targeted())
}

func (s *Session) drainReloads() {
	if s.reloads == nil {
		return
	}
	for {
		select {
		case msg, ok := <-s.reloads:
			if !ok {
				s.reloads = nil
				return
			}
			s.Reload(msg)
		default:
			return
		}
	}
}

// tickRemote fires the debounced registry call. The call blocks the
// tick, bounded by the configured timeout; there is no mid-flight
// cancellation, only a fresh request after the next quiet period.
func (s *Session) tickRemote() {
	searcher, ok := s.searchers[s.mode]
	if !ok || !s.remote.pending {
		return
	}
	if s.now().Sub(s.remote.lastKeystroke) < s.cfg.Search.Debounce() {
		return
	}
	if s.query == s.remote.lastSearched {
		s.remote.pending = false
		return
	}

	items, err := searchWithTimeout(searcher, s.query, s.cfg.Search.RemoteTimeout())
	if err != nil {
		// Keep stale results visible; the next keystroke retries.
		log.Warn("remote_search_failed", "mode", s.mode.String(), "query", s.query, "error", err)
		s.remote.pending = false
		return
	}
	s.cat = catalog.FromItems(items)
	s.remote.lastSearched = s.query
	s.remote.pending = false
	s.refreshResults()
}

// enterMode switches the active mode, swapping the catalog wholesale.
func (s *Session) enterMode(m catalog.Mode) {
	s.mode = m
	s.query = ""
	s.cursor = 0
	s.remote = remoteState{}
	switch m {
	case catalog.ModeNormal:
		s.cat = s.loader.Load(s.sources)
	case catalog.ModeClipboardHistory:
		s.cat = s.loader.LoadClipboard()
	default:
		s.cat = catalog.New()
	}
	s.refreshResults()
	log.Debug("mode_entered", "mode", m.String())
}

// refreshResults recomputes the visible list. Normal mode layers the
// calculator over the fuzzy results; remote modes show the fetched
// catalog as-is, since filtering already happened server-side.
func (s *Session) refreshResults() {
	if _, remote := s.searchers[s.mode]; remote {
		s.results = s.cat.Items()
	} else {
		s.results = s.cat.Search(s.query)
		if s.mode == catalog.ModeNormal && s.query != "" {
			if result, ok := s.calc.Evaluate(s.query); ok {
				s.results = append([]catalog.Item{catalog.NewCalculatorResult(s.query, result)}, s.results...)
			}
		}
	}
	if s.cursor >= len(s.results) {
		s.cursor = 0
	}
}

func searchWithTimeout(searcher registry.Searcher, query string, timeout time.Duration) ([]catalog.Item, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return searcher.Search(ctx, query)
}
