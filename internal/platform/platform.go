// Package platform detects the host platform and answers the capability
// questions the launcher cares about: where applications live, whether
// unix sockets work, and whether fsnotify is reliable on a given path.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform represents the detected platform.
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformWSL     Platform = "wsl"
	PlatformUnknown Platform = "unknown"
)

// cached detection result
var detectedPlatform Platform
var detectionDone bool

// Detect returns the current platform, caching the result.
func Detect() Platform {
	if detectionDone {
		return detectedPlatform
	}
	detectedPlatform = detectPlatform()
	detectionDone = true
	return detectedPlatform
}

func detectPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMacOS
	case "linux":
		if isWSL() {
			return PlatformWSL
		}
		return PlatformLinux
	default:
		return PlatformUnknown
	}
}

func isWSL() bool {
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		return true
	}
	procVersion, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	v := string(procVersion)
	return strings.Contains(v, "microsoft") || strings.Contains(v, "Microsoft")
}

// SupportsUnixSockets reports whether the single-instance socket can be
// relied on. WSL1 breaks unix sockets but is indistinguishable enough from
// WSL2 here that we accept them both; the coordinator degrades to
// lock-file-only behavior when binding fails.
func SupportsUnixSockets() bool {
	switch Detect() {
	case PlatformMacOS, PlatformLinux, PlatformWSL:
		return true
	default:
		return false
	}
}

// ApplicationDirs returns the directories the apps daemon watches for
// installed applications, filtered to those that exist.
func ApplicationDirs() []string {
	var candidates []string
	switch Detect() {
	case PlatformMacOS:
		candidates = []string{
			"/Applications",
			"/System/Applications",
			"/System/Applications/Utilities",
		}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, "Applications"))
		}
	default:
		dataDirs := os.Getenv("XDG_DATA_DIRS")
		if dataDirs == "" {
			dataDirs = "/usr/share:/usr/local/share"
		}
		for _, base := range strings.Split(dataDirs, ":") {
			if base == "" {
				continue
			}
			candidates = append(candidates, filepath.Join(base, "applications"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, ".local", "share", "applications"))
		}
	}

	seen := make(map[string]bool, len(candidates))
	dirs := make([]string, 0, len(candidates))
	for _, dir := range candidates {
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// String returns a human-readable platform name.
func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macOS"
	case PlatformLinux:
		return "Linux"
	case PlatformWSL:
		return "WSL"
	default:
		return "Unknown"
	}
}

// CheckFsnotifySupport checks if a path's filesystem supports fsnotify
// events reliably. Returns a warning message for problematic filesystems
// (9p, nfs, cifs, sshfs), or "" if fsnotify should work. The apps daemon
// logs this at startup so users know why auto-refresh may lag.
func CheckFsnotifySupport(path string) string {
	if runtime.GOOS != "linux" {
		return ""
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	mounts, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return ""
	}

	// Longest-prefix match over /proc/mounts entries.
	var matchedMount, matchedFsType string
	for _, line := range strings.Split(string(mounts), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		mountPoint, fsType := fields[1], fields[2]
		if strings.HasPrefix(absPath, mountPoint) && len(mountPoint) > len(matchedMount) {
			matchedMount = mountPoint
			matchedFsType = fsType
		}
	}

	switch {
	case matchedFsType == "9p":
		return "watch dir on 9p mount: change notifications disabled, cache refreshes on daemon restart only"
	case matchedFsType == "nfs" || matchedFsType == "nfs4":
		return "watch dir on NFS mount: change notifications may be unreliable"
	case matchedFsType == "cifs" || matchedFsType == "smbfs":
		return "watch dir on CIFS/SMB mount: change notifications may be unreliable"
	case strings.HasPrefix(matchedFsType, "fuse.sshfs"):
		return "watch dir on SSHFS mount: change notifications disabled"
	}
	return ""
}
