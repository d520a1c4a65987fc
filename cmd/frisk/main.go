package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/calrichards/frisk/internal/config"
	"github.com/calrichards/frisk/internal/logging"
	"github.com/calrichards/frisk/internal/paths"
)

const Version = "0.1.0"

func main() {
	// A .env next to the working directory can override endpoints and
	// runtime paths during development.
	_ = godotenv.Load()

	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("frisk v%s\n", Version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "daemon":
			handleDaemon(args[1:])
			return
		case "service":
			handleService(args[1:])
			return
		case "run":
			handleRun(args[1:])
			return
		}
	}

	handleRun(args)
}

// initLogging wires slog per the config. Log files always go to the
// state directory; stderr mirroring uses text format when attached to
// a terminal and JSON otherwise, so piped output stays parseable.
func initLogging(cfg *config.UserConfig, component string, debug bool) {
	logDir, err := paths.LogDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: no log directory: %v\n", err)
		return
	}

	format := "json"
	if term.IsTerminal(int(os.Stderr.Fd())) {
		format = "text"
	}
	logging.Init(logging.Config{
		LogDir:   logDir,
		FileName: "frisk-" + component + ".log",
		Level:    cfg.Logging.Level,
		Format:   format,
		Debug:    debug || cfg.Logging.Debug,
	})
}

func printHelp() {
	fmt.Print(`frisk - application launcher

Usage:
  frisk [run] [flags]      launch (or reload the running instance)
  frisk daemon <name>      run a source daemon (apps|clipboard|homebrew|nixpkgs)
  frisk service <command>  manage background services (install|uninstall|start|stop|status|list)
  frisk version            print version

Run flags:
  -apps, -homebrew, -clipboard, -commands, -nixpkgs
        select catalog sources (default: apps + commands)
  -source <path>
        load an extra cache-format file (repeatable)
  -prompt <text>
        override the prompt for this run
  -debug
        verbose logging

When an instance is already running, a second "frisk run" forwards its
flags as a reload request and exits.
`)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
