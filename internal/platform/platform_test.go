package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDetect(t *testing.T) {
	// Reset detection cache for clean test
	detectionDone = false
	detectedPlatform = ""

	p := Detect()
	if p == "" {
		t.Error("Detect() returned empty platform")
	}

	if runtime.GOOS == "darwin" && p != PlatformMacOS {
		t.Errorf("Expected PlatformMacOS on darwin, got %s", p)
	}

	// Detection should be cached
	p2 := Detect()
	if p != p2 {
		t.Errorf("Detect() not cached: got %s then %s", p, p2)
	}
}

func TestPlatformString(t *testing.T) {
	tests := []struct {
		platform Platform
		expected string
	}{
		{PlatformMacOS, "macOS"},
		{PlatformLinux, "Linux"},
		{PlatformWSL, "WSL"},
		{PlatformUnknown, "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.platform.String(); got != tt.expected {
			t.Errorf("Platform(%s).String() = %s, want %s", tt.platform, got, tt.expected)
		}
	}
}

func TestSupportsUnixSockets(t *testing.T) {
	tests := []struct {
		platform Platform
		expected bool
	}{
		{PlatformMacOS, true},
		{PlatformLinux, true},
		{PlatformWSL, true},
		{PlatformUnknown, false},
	}

	for _, tt := range tests {
		// Override detection for testing
		detectedPlatform = tt.platform
		detectionDone = true

		if got := SupportsUnixSockets(); got != tt.expected {
			t.Errorf("SupportsUnixSockets() for %s = %v, want %v", tt.platform, got, tt.expected)
		}
	}

	// Reset for other tests
	detectionDone = false
}

func TestApplicationDirsExist(t *testing.T) {
	detectionDone = false
	detectedPlatform = ""

	for _, dir := range ApplicationDirs() {
		if dir == "" {
			t.Error("ApplicationDirs() returned an empty path")
		}
	}
}

func TestApplicationDirsHonorXDGDataDirs(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_DATA_DIRS only applies on linux")
	}
	detectionDone = false
	detectedPlatform = ""

	base := t.TempDir()
	appDir := filepath.Join(base, "applications")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	// Duplicate entries must not produce duplicate dirs.
	t.Setenv("XDG_DATA_DIRS", base+":"+base)

	found := 0
	for _, dir := range ApplicationDirs() {
		if dir == appDir {
			found++
		}
	}
	if found != 1 {
		t.Errorf("expected %s exactly once in ApplicationDirs(), got %d", appDir, found)
	}
}

func TestCheckFsnotifySupportLocalPath(t *testing.T) {
	// A temp dir is on a local filesystem everywhere we run tests.
	if warn := CheckFsnotifySupport(t.TempDir()); warn != "" {
		t.Errorf("unexpected warning for local path: %s", warn)
	}
}
