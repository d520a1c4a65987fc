// Package daemon implements the background data producers. Each daemon
// owns exactly one cache file and is the only writer of it; the
// launcher process only reads. Apps and clipboard run continuously,
// homebrew and nixpkgs are one-shot refreshes meant for a scheduler.
package daemon

import (
	"github.com/calrichards/frisk/internal/logging"
)

var log = logging.ForComponent(logging.CompDaemon)
