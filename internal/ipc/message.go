// Package ipc makes frisk single-instance: a PID lock file decides who
// is primary, and a unix socket lets later launches hand their flags to
// the running process as a reload request.
package ipc

import (
	"github.com/calrichards/frisk/internal/logging"
)

var log = logging.ForComponent(logging.CompIPC)

// ReloadMessage asks the primary instance to rebuild its catalog. The
// boolean fields select which sources to reload; all false means
// "everything". One JSON object per line on the wire.
type ReloadMessage struct {
	Apps      bool     `json:"apps"`
	Homebrew  bool     `json:"homebrew"`
	Clipboard bool     `json:"clipboard"`
	Commands  bool     `json:"commands"`
	Nixpkgs   bool     `json:"nixpkgs"`

	// Sources are extra cache-format files to load alongside the
	// standard sources.
	Sources []string `json:"sources,omitempty"`

	// Prompt, when set, replaces the prompt text for the session.
	Prompt *string `json:"prompt,omitempty"`
}

// Targeted reports whether the message names specific sources. An
// untargeted reload refreshes everything.
func (m ReloadMessage) Targeted() bool {
	return m.Apps || m.Homebrew || m.Clipboard || m.Commands || m.Nixpkgs
}
