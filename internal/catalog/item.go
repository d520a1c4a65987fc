// Package catalog holds the in-memory collection of launchable items and
// its fuzzy search. A Catalog is rebuilt wholesale on reload or mode
// switch and is owned exclusively by the loop driving it.
package catalog

// Kind tags what an Item's value means and how executing it behaves.
type Kind int

const (
	KindApplication Kind = iota
	KindCalculatorResult
	KindSystemCommand
	KindClipboardEntry
	KindNixPackage
	KindRustCrate
	KindHomebrewPackage
	// KindModeSwitch marks an item whose selection switches the active
	// search mode instead of launching anything. The target mode lives in
	// Item.Mode rather than being smuggled through Value as a magic string.
	KindModeSwitch
)

func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "application"
	case KindCalculatorResult:
		return "calculator"
	case KindSystemCommand:
		return "command"
	case KindClipboardEntry:
		return "clipboard"
	case KindNixPackage:
		return "nixpkg"
	case KindRustCrate:
		return "crate"
	case KindHomebrewPackage:
		return "homebrew"
	case KindModeSwitch:
		return "mode"
	default:
		return "unknown"
	}
}

// Mode selects which catalog and search strategy is active.
type Mode int

const (
	ModeNormal Mode = iota
	ModeClipboardHistory
	ModeNixpkgsSearch
	ModeCratesSearch
	ModeHomebrewSearch
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeClipboardHistory:
		return "clipboard"
	case ModeNixpkgsSearch:
		return "nixpkgs"
	case ModeCratesSearch:
		return "crates"
	case ModeHomebrewSearch:
		return "homebrew"
	default:
		return "unknown"
	}
}

// Item is one searchable, executable entry. Name is the display text used
// for matching; Value is what actually gets launched, copied, or opened.
// Items are immutable value objects once constructed.
type Item struct {
	Name  string
	Value string
	Kind  Kind
	// Mode is meaningful only when Kind == KindModeSwitch.
	Mode Mode
}

// NewApplication creates an application item; Value is the bundle or
// desktop-entry path handed to the OS launcher.
func NewApplication(name, path string) Item {
	return Item{Name: name, Value: path, Kind: KindApplication}
}

// NewCalculatorResult creates the synthetic item shown for a query
// that evaluates as arithmetic; Value is the result text copied on
// selection.
func NewCalculatorResult(query, result string) Item {
	return Item{Name: query + " = " + result, Value: result, Kind: KindCalculatorResult}
}

// NewSystemCommand creates a custom command item; Value runs via sh -c.
func NewSystemCommand(name, action string) Item {
	return Item{Name: name, Value: action, Kind: KindSystemCommand}
}

// NewClipboardEntry creates a clipboard history item. Display is the
// whitespace-normalized truncation; value keeps original formatting so
// pasting round-trips.
func NewClipboardEntry(display, content string) Item {
	return Item{Name: display, Value: content, Kind: KindClipboardEntry}
}

// NewNixPackage creates a nixpkgs item; Value is the attribute name
// copied to the clipboard on selection.
func NewNixPackage(display, attr string) Item {
	return Item{Name: display, Value: attr, Kind: KindNixPackage}
}

// NewRustCrate creates a crates.io item; Value is the crate URL.
func NewRustCrate(display, url string) Item {
	return Item{Name: display, Value: url, Kind: KindRustCrate}
}

// NewHomebrewPackage creates a homebrew item; Value is the homepage URL.
func NewHomebrewPackage(display, url string) Item {
	return Item{Name: display, Value: url, Kind: KindHomebrewPackage}
}

// NewModeSwitch creates a mode-switch item shown in the Normal catalog.
func NewModeSwitch(name string, mode Mode) Item {
	return Item{Name: name, Kind: KindModeSwitch, Mode: mode}
}
