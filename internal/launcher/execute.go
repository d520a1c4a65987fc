package launcher

import (
	"fmt"
	"os/exec"

	"github.com/calrichards/frisk/internal/catalog"
	"github.com/calrichards/frisk/internal/clipboard"
	"github.com/calrichards/frisk/internal/platform"
)

// Runner starts external processes. Injected so execution semantics
// are testable without launching anything.
type Runner interface {
	Run(name string, args ...string) error
}

// execRunner spawns without waiting; the launcher exits right after
// and must not hold the child back.
type execRunner struct{}

func (execRunner) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}

// Executor acts on selected items: launch, copy, or open depending on
// the item kind.
type Executor struct {
	runner Runner
	copy   func(string) error
}

// NewExecutor creates an executor over the real process runner and
// system clipboard.
func NewExecutor() *Executor {
	return &Executor{runner: execRunner{}, copy: clipboard.Write}
}

// SetRunner replaces the process runner (tests).
func (e *Executor) SetRunner(r Runner) { e.runner = r }

// SetCopier replaces the clipboard write (tests).
func (e *Executor) SetCopier(copy func(string) error) { e.copy = copy }

// Execute performs the item's action. exit reports whether the
// launcher should close afterwards; a failed action keeps it open so
// the user sees the state unchanged.
func (e *Executor) Execute(item catalog.Item) (exit bool, err error) {
	switch item.Kind {
	case catalog.KindApplication:
		log.Info("launching", "name", item.Name)
		return true, e.launch(item.Value)

	case catalog.KindCalculatorResult, catalog.KindClipboardEntry, catalog.KindNixPackage:
		log.Info("copying", "kind", item.Kind.String())
		return true, e.copy(item.Value)

	case catalog.KindRustCrate, catalog.KindHomebrewPackage:
		log.Info("opening", "url", item.Value)
		return true, e.open(item.Value)

	case catalog.KindSystemCommand:
		log.Info("running_command", "name", item.Name)
		return true, e.runner.Run("sh", "-c", item.Value)

	default:
		return false, fmt.Errorf("cannot execute %s item", item.Kind)
	}
}

// launch starts an application from its bundle or desktop-entry path.
func (e *Executor) launch(path string) error {
	if platform.Detect() == platform.PlatformMacOS {
		return e.runner.Run("open", "-a", path)
	}
	if _, err := exec.LookPath("gio"); err == nil {
		return e.runner.Run("gio", "launch", path)
	}
	return e.runner.Run("xdg-open", path)
}

// open hands a URL to the system handler.
func (e *Executor) open(url string) error {
	if platform.Detect() == platform.PlatformMacOS {
		return e.runner.Run("open", url)
	}
	return e.runner.Run("xdg-open", url)
}
