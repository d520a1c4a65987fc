package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/calrichards/frisk/internal/cache"
	"github.com/calrichards/frisk/internal/config"
	"github.com/calrichards/frisk/internal/daemon"
	"github.com/calrichards/frisk/internal/logging"
	"github.com/calrichards/frisk/internal/paths"
	"github.com/calrichards/frisk/internal/registry"
)

func handleDaemon(args []string) {
	fs := flag.NewFlagSet("daemon", flag.ExitOnError)
	debug := fs.Bool("debug", false, "verbose logging")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: frisk daemon <apps|clipboard|homebrew|nixpkgs>")
		os.Exit(1)
	}
	name := fs.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	initDaemonLogging(cfg, name, *debug)
	defer logging.Shutdown()

	store, err := cache.Open()
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch name {
	case "apps":
		d := daemon.NewAppsDaemon(daemon.NewAppScanner(), store, cfg.Apps.Debounce(), cfg.Apps.ExtraDirs)
		err = d.Run(ctx)
	case "clipboard":
		d := daemon.NewClipboardDaemon(nil, store, cfg.Clipboard.PollInterval(), cfg.Clipboard.MaxHistory)
		err = d.Run(ctx)
	case "homebrew":
		dataset := registry.NewBrewDataset(store, 30*time.Second, os.Getenv("FRISK_BREW_URL"))
		err = daemon.NewHomebrewDaemon(dataset, store).Run(ctx)
	case "nixpkgs":
		client := registry.NewNixpkgsClient(30*time.Second, cfg.Search.MaxRequestsPerSec,
			os.Getenv("FRISK_NIXPKGS_VERSION_URL"), os.Getenv("FRISK_NIXPKGS_BACKEND"))
		err = daemon.NewNixpkgsDaemon(client, store).Run(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown daemon: %s\n", name)
		os.Exit(1)
	}

	if err != nil && ctx.Err() == nil {
		dumpCrashLog(name)
		fatal(err)
	}
}

// dumpCrashLog writes the recent log tail next to the rotated file so a
// crash keeps its context even when debug logging was off.
func dumpCrashLog(name string) {
	logDir, err := paths.LogDir()
	if err != nil {
		return
	}
	path := filepath.Join(logDir, "frisk-"+name+"-crash.log")
	if err := logging.DumpRingBuffer(path); err == nil {
		fmt.Fprintf(os.Stderr, "Crash log written to %s\n", path)
	}
}

// initDaemonLogging mirrors daemon logs to stderr so launchd and
// systemd capture them alongside the rotated file.
func initDaemonLogging(cfg *config.UserConfig, name string, debug bool) {
	logDir, err := paths.LogDir()
	if err != nil {
		logDir = ""
	}
	logging.Init(logging.Config{
		LogDir:   logDir,
		FileName: "frisk-" + name + ".log",
		Level:    cfg.Logging.Level,
		Mirror:   os.Stderr,
		Debug:    debug || cfg.Logging.Debug,
	})
}
