// Command boardctl is a headless whiteboard peer for scripting and debugging
// a relay.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type globals struct {
	relay   string
	board   string
	token   string
	name    string
	timeout time.Duration
	logger  *slog.Logger
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, g *globals, args []string) error
}

var commands = []command{
	{"guest", "guest                      print a guest token for -name", runGuest},
	{"create", "create                     create a board and print its id", runCreate},
	{"watch", "watch                      log roster changes and remote snapshots", runWatch},
	{"line", "line x0 y0 x1 y1           draw a line in screen coordinates", runLine},
	{"box", "box x0 y0 x1 y1            draw a box in screen coordinates", runBox},
	{"text", "text x y label             place a text label", runText},
	{"clear", "clear                      clear the board for everyone", runClear},
	{"export", "export [-local] [-format pdf|png] [-o file]  save the board", runExport},
	{"history", "history [-n limit]         list stored versions", runHistory},
	{"discover", "discover                   find relays on the local network", runDiscover},
}

func main() {
	g := &globals{}
	flag.StringVar(&g.relay, "relay", envOr("WHITEBOARD_RELAY", "http://localhost:8080"), "Relay base URL")
	flag.StringVar(&g.board, "board", "playground", "Board id")
	flag.StringVar(&g.token, "token", os.Getenv("WHITEBOARD_TOKEN"), "Auth token (fetched as a guest when empty)")
	flag.StringVar(&g.name, "name", "boardctl", "Display name for guest tokens")
	flag.DurationVar(&g.timeout, "timeout", 10*time.Second, "Timeout for one-shot commands")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "boardctl - headless whiteboard peer\n\nUsage:\n  boardctl [flags] <command> [args]\n\nCommands:\n")
		for _, c := range commands {
			fmt.Fprintf(os.Stderr, "  %s\n", c.usage)
		}
		fmt.Fprintf(os.Stderr, "\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	g.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cmd, ok := lookup(flag.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, g, flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
