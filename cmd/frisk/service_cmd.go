package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/calrichards/frisk/internal/platform"
)

const servicePrefix = "io.calrichards.frisk"

var serviceNames = []string{"apps", "clipboard", "homebrew", "nixpkgs"}

// serviceInterval returns the scheduler period in seconds, or 0 for
// keep-alive services. The clipboard daemon must always be running;
// the rest are periodic refreshes.
func serviceInterval(name string) int {
	switch name {
	case "apps", "homebrew":
		return 3600
	case "nixpkgs":
		return 43200
	default:
		return 0
	}
}

func handleService(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: frisk service <install|uninstall|start|stop|status|list> [name|all]")
		os.Exit(1)
	}
	cmd := args[0]

	if cmd == "list" {
		for _, name := range serviceNames {
			fmt.Println(name)
		}
		return
	}

	target := "all"
	if len(args) > 1 {
		target = args[1]
	}
	names, err := expandServiceName(target)
	if err != nil {
		fatal(err)
	}

	for _, name := range names {
		svc, err := newService(name)
		if err != nil {
			fatal(err)
		}
		switch cmd {
		case "install":
			err = svc.install()
		case "uninstall":
			err = svc.uninstall()
		case "start":
			err = svc.start()
		case "stop":
			err = svc.stop()
		case "status":
			if svc.installed() {
				fmt.Printf("%-10s installed (%s)\n", name, svc.unitPath())
			} else {
				fmt.Printf("%-10s not installed\n", name)
			}
		default:
			fmt.Fprintf(os.Stderr, "Unknown service command: %s\n", cmd)
			os.Exit(1)
		}
		if err != nil {
			fatal(err)
		}
	}
}

func expandServiceName(name string) ([]string, error) {
	if name == "all" {
		return serviceNames, nil
	}
	for _, known := range serviceNames {
		if name == known {
			return []string{name}, nil
		}
	}
	return nil, fmt.Errorf("unknown service %q (valid: %s, all)", name, strings.Join(serviceNames, ", "))
}

// service writes and controls one scheduler unit: a LaunchAgent plist
// on macOS, a systemd user service (plus timer for periodic daemons)
// on Linux.
type service struct {
	name    string
	binPath string
	macos   bool
}

func newService(name string) (*service, error) {
	bin, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return &service{
		name:    name,
		binPath: bin,
		macos:   platform.Detect() == platform.PlatformMacOS,
	}, nil
}

func (s *service) label() string {
	return servicePrefix + "." + s.name
}

func (s *service) unitPath() string {
	home, _ := os.UserHomeDir()
	if s.macos {
		return filepath.Join(home, "Library", "LaunchAgents", s.label()+".plist")
	}
	return filepath.Join(home, ".config", "systemd", "user", "frisk-"+s.name+".service")
}

func (s *service) timerPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "systemd", "user", "frisk-"+s.name+".timer")
}

func (s *service) installed() bool {
	_, err := os.Stat(s.unitPath())
	return err == nil
}

func (s *service) install() error {
	if s.installed() {
		fmt.Printf("Service %q already installed at %s\n", s.name, s.unitPath())
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.unitPath()), 0o755); err != nil {
		return err
	}

	if s.macos {
		if err := os.WriteFile(s.unitPath(), []byte(s.plist()), 0o644); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(s.unitPath(), []byte(s.systemdService()), 0o644); err != nil {
			return err
		}
		if serviceInterval(s.name) > 0 {
			if err := os.WriteFile(s.timerPath(), []byte(s.systemdTimer()), 0o644); err != nil {
				return err
			}
		}
	}
	fmt.Printf("Installed service %q to %s\n", s.name, s.unitPath())
	return nil
}

func (s *service) uninstall() error {
	if !s.installed() {
		fmt.Printf("Service %q not installed\n", s.name)
		return nil
	}
	s.stop()
	if err := os.Remove(s.unitPath()); err != nil {
		return err
	}
	if !s.macos {
		os.Remove(s.timerPath())
	}
	fmt.Printf("Uninstalled service %q\n", s.name)
	return nil
}

func (s *service) start() error {
	if !s.installed() {
		return fmt.Errorf("service %q not installed", s.name)
	}
	if s.macos {
		out, err := exec.Command("launchctl", "load", s.unitPath()).CombinedOutput()
		if err != nil && !strings.Contains(string(out), "already loaded") {
			return fmt.Errorf("launchctl load: %s", strings.TrimSpace(string(out)))
		}
	} else {
		unit := "frisk-" + s.name + ".service"
		if serviceInterval(s.name) > 0 {
			unit = "frisk-" + s.name + ".timer"
		}
		if out, err := exec.Command("systemctl", "--user", "enable", "--now", unit).CombinedOutput(); err != nil {
			return fmt.Errorf("systemctl enable: %s", strings.TrimSpace(string(out)))
		}
	}
	fmt.Printf("Started service %q\n", s.name)
	return nil
}

func (s *service) stop() error {
	if s.macos {
		out, err := exec.Command("launchctl", "unload", s.unitPath()).CombinedOutput()
		if err != nil && !strings.Contains(string(out), "Could not find") {
			return fmt.Errorf("launchctl unload: %s", strings.TrimSpace(string(out)))
		}
	} else {
		unit := "frisk-" + s.name + ".service"
		if serviceInterval(s.name) > 0 {
			unit = "frisk-" + s.name + ".timer"
		}
		exec.Command("systemctl", "--user", "disable", "--now", unit).Run()
	}
	fmt.Printf("Stopped service %q\n", s.name)
	return nil
}

func (s *service) logPath(kind string) string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Logs", fmt.Sprintf("frisk-%s.%s", s.name, kind))
}

func (s *service) plist() string {
	keepAlive := "false/"
	if serviceInterval(s.name) == 0 {
		keepAlive = "true/"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>%s</string>
    <key>ProgramArguments</key>
    <array>
        <string>%s</string>
        <string>daemon</string>
        <string>%s</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <%s>
    <key>StandardOutPath</key>
    <string>%s</string>
    <key>StandardErrorPath</key>
    <string>%s</string>`,
		s.label(), s.binPath, s.name, keepAlive, s.logPath("log"), s.logPath("err"))

	if interval := serviceInterval(s.name); interval > 0 {
		fmt.Fprintf(&b, `
    <key>StartInterval</key>
    <integer>%d</integer>`, interval)
	}

	b.WriteString("\n</dict>\n</plist>\n")
	return b.String()
}

func (s *service) systemdService() string {
	kind := "oneshot"
	restart := ""
	if serviceInterval(s.name) == 0 {
		kind = "simple"
		restart = "Restart=always\nRestartSec=5\n"
	}
	return fmt.Sprintf(`[Unit]
Description=frisk %s daemon

[Service]
Type=%s
ExecStart=%s daemon %s
%s
[Install]
WantedBy=default.target
`, s.name, kind, s.binPath, s.name, restart)
}

func (s *service) systemdTimer() string {
	return fmt.Sprintf(`[Unit]
Description=frisk %s refresh timer

[Timer]
OnBootSec=2min
OnUnitActiveSec=%ds

[Install]
WantedBy=timers.target
`, s.name, serviceInterval(s.name))
}
