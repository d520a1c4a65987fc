// Package clipboard is the system clipboard boundary: the history daemon
// reads through it and item execution copies through it.
package clipboard

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/calrichards/frisk/internal/platform"
)

// Read returns the current clipboard text. There is no push notification
// for clipboard changes on any supported platform, so the daemon polls
// this on a short interval.
func Read() (string, error) {
	text, err := clipboard.ReadAll()
	if err == nil {
		return text, nil
	}
	// atotto shells out to the same tools but gives a generic error when
	// none exist; retry the native chain so the failure names a command.
	return readNative()
}

// Write copies text to the system clipboard.
func Write(text string) error {
	if text == "" {
		return fmt.Errorf("no content to copy")
	}
	if err := clipboard.WriteAll(text); err == nil {
		return nil
	}
	return writeNative(text)
}

func readNative() (string, error) {
	switch platform.Detect() {
	case platform.PlatformMacOS:
		return runReadCmd("pbpaste", nil)
	case platform.PlatformLinux, platform.PlatformWSL:
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			if path, err := exec.LookPath("wl-paste"); err == nil {
				return runReadCmd(path, []string{"--no-newline"})
			}
		}
		if path, err := exec.LookPath("xclip"); err == nil {
			return runReadCmd(path, []string{"-selection", "clipboard", "-o"})
		}
		if path, err := exec.LookPath("xsel"); err == nil {
			return runReadCmd(path, []string{"--clipboard", "--output"})
		}
		return "", fmt.Errorf("no clipboard read command found (install xclip, xsel, or wl-paste)")
	default:
		return "", fmt.Errorf("unsupported platform: %s", platform.Detect())
	}
}

func writeNative(text string) error {
	switch platform.Detect() {
	case platform.PlatformMacOS:
		return runWriteCmd("pbcopy", nil, text)
	case platform.PlatformLinux, platform.PlatformWSL:
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			if path, err := exec.LookPath("wl-copy"); err == nil {
				return runWriteCmd(path, nil, text)
			}
		}
		if path, err := exec.LookPath("xclip"); err == nil {
			return runWriteCmd(path, []string{"-selection", "clipboard"}, text)
		}
		if path, err := exec.LookPath("xsel"); err == nil {
			return runWriteCmd(path, []string{"--clipboard", "--input"}, text)
		}
		return fmt.Errorf("no clipboard write command found (install xclip, xsel, or wl-copy)")
	default:
		return fmt.Errorf("unsupported platform: %s", platform.Detect())
	}
}

func runReadCmd(name string, args []string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(out), nil
}

func runWriteCmd(name string, args []string, text string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
