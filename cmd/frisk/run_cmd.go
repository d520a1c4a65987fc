package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/calrichards/frisk/internal/cache"
	"github.com/calrichards/frisk/internal/catalog"
	"github.com/calrichards/frisk/internal/config"
	"github.com/calrichards/frisk/internal/ipc"
	"github.com/calrichards/frisk/internal/launcher"
	"github.com/calrichards/frisk/internal/logging"
	"github.com/calrichards/frisk/internal/platform"
	"github.com/calrichards/frisk/internal/registry"
)

// tickInterval is the main-loop cadence: reload delivery and remote
// search debouncing both ride on it.
const tickInterval = 50 * time.Millisecond

func handleRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	apps := fs.Bool("apps", false, "load the applications cache")
	homebrew := fs.Bool("homebrew", false, "load the homebrew cache")
	clip := fs.Bool("clipboard", false, "load the clipboard history")
	commands := fs.Bool("commands", false, "load custom commands")
	nixpkgs := fs.Bool("nixpkgs", false, "load the nixpkgs cache")
	var files multiFlag
	fs.Var(&files, "source", "extra cache-format file to load (repeatable)")
	prompt := fs.String("prompt", "", "prompt override")
	debug := fs.Bool("debug", false, "verbose logging")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	initLogging(cfg, "launcher", *debug)
	defer logging.Shutdown()
	log := logging.ForComponent(logging.CompCLI)

	msg := ipc.ReloadMessage{
		Apps:      *apps,
		Homebrew:  *homebrew,
		Clipboard: *clip,
		Commands:  *commands,
		Nixpkgs:   *nixpkgs,
		Sources:   files,
	}
	if *prompt != "" {
		msg.Prompt = prompt
	}

	coord := ipc.NewCoordinator()
	forwarded, err := coord.CheckSingleInstance(msg)
	if err != nil {
		fatal(err)
	}
	if forwarded {
		fmt.Println("Reloaded running instance.")
		return
	}
	defer coord.Cleanup()

	store, err := cache.Open()
	if err != nil {
		fatal(err)
	}

	// Without a working socket the instance still runs, it just cannot
	// be reloaded; `frisk run` against it reports "already running".
	var listener *ipc.Listener
	if !platform.SupportsUnixSockets() {
		log.Warn("reload_socket_unsupported", "platform", platform.Detect().String())
	} else {
		listener = ipc.NewListener()
		if err := listener.Start(); err != nil {
			log.Warn("reload_socket_unavailable", "error", err)
			listener = nil
		} else {
			defer listener.Stop()
		}
	}

	session := launcher.NewSession(launcher.NewLoader(store, ""), cfg, buildSearchers(cfg, store))
	sources := launcher.DefaultSources().Merge(msg)
	session.SetSources(sources)
	if msg.Prompt != nil {
		session.SetPrompt(*msg.Prompt)
	}
	if listener != nil {
		session.AttachReloads(listener.Messages())
	}
	session.Start()

	// Clean up lock and socket on ctrl-c as well as clean exit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("signal_exit")
		if listener != nil {
			listener.Stop()
		}
		coord.Cleanup()
		logging.Shutdown()
		os.Exit(0)
	}()

	runLoop(session)
}

// buildSearchers wires one registry client per remote mode. Endpoint
// env overrides exist for development against local fixtures.
func buildSearchers(cfg *config.UserConfig, store *cache.Store) map[catalog.Mode]registry.Searcher {
	timeout := cfg.Search.RemoteTimeout()
	perSec := cfg.Search.MaxRequestsPerSec
	return map[catalog.Mode]registry.Searcher{
		catalog.ModeNixpkgsSearch: registry.NewNixpkgsClient(timeout, perSec,
			os.Getenv("FRISK_NIXPKGS_VERSION_URL"), os.Getenv("FRISK_NIXPKGS_BACKEND")),
		catalog.ModeCratesSearch: registry.NewCratesClient(timeout, perSec,
			os.Getenv("FRISK_CRATES_URL")),
		catalog.ModeHomebrewSearch: registry.NewBrewDataset(store, 10*time.Second,
			os.Getenv("FRISK_BREW_URL")),
	}
}

// runLoop drives the session from stdin, standing in for the GUI: each
// line updates the query, "!N" executes result N, and a blank line
// re-prints the current results. Ticks keep running between reads so
// reloads and debounced searches fire on time.
func runLoop(session *launcher.Session) {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	printResults(session)
	for {
		select {
		case <-ticker.C:
			wasPending := session.Pending()
			session.Tick()
			if wasPending && !session.Pending() {
				printResults(session)
			}

		case line, ok := <-lines:
			if !ok {
				return
			}
			if rest, isExec := strings.CutPrefix(line, "!"); isExec {
				n, err := strconv.Atoi(strings.TrimSpace(rest))
				if err != nil || n < 0 || n >= len(session.Results()) {
					fmt.Println("No such result.")
					continue
				}
				for session.Cursor() != n {
					if session.Cursor() < n {
						session.CursorDown()
					} else {
						session.CursorUp()
					}
				}
				exit, err := session.Execute()
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					continue
				}
				if exit {
					return
				}
				printResults(session)
				continue
			}
			session.SetQuery(line)
			printResults(session)
		}
	}
}

func printResults(session *launcher.Session) {
	results := session.Results()
	switch {
	case session.Pending():
		fmt.Println("  searching...")
	case len(results) == 0 && session.Query() != "":
		fmt.Println("  no results")
	default:
		max := len(results)
		if max > 10 {
			max = 10
		}
		for i := 0; i < max; i++ {
			marker := " "
			if i == session.Cursor() {
				marker = ">"
			}
			fmt.Printf("%s %2d  %s\n", marker, i, results[i].Name)
		}
	}
	fmt.Printf("%s%s\n", session.Prompt(), session.Query())
}
