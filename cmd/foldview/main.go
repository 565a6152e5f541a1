// Package main is the entry point for the foldview fold-preview viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dshills/foldview/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the parsed command line.
type options struct {
	app   app.Options
	folds []foldRange
}

// foldRange is a fold given on the command line, already zero-based.
type foldRange struct {
	start, end uint32
}

// foldList collects repeated -fold flags.
type foldList []foldRange

func (f *foldList) String() string {
	parts := make([]string, len(*f))
	for i, r := range *f {
		parts[i] = fmt.Sprintf("%d:%d", r.start+1, r.end+1)
	}
	return strings.Join(parts, ",")
}

func (f *foldList) Set(v string) error {
	start, end, ok := strings.Cut(v, ":")
	if !ok {
		return fmt.Errorf("fold must be START:END, got %q", v)
	}
	s, err := strconv.ParseUint(start, 10, 32)
	if err != nil {
		return fmt.Errorf("fold start line: %w", err)
	}
	e, err := strconv.ParseUint(end, 10, 32)
	if err != nil {
		return fmt.Errorf("fold end line: %w", err)
	}
	if s < 1 || e < s {
		return fmt.Errorf("fold lines are 1-based and START must not exceed END, got %q", v)
	}
	*f = append(*f, foldRange{start: uint32(s - 1), end: uint32(e - 1)})
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	// The terminal UI owns the screen, so logs go to a file or nowhere.
	if path := os.Getenv("FOLDVIEW_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		opts.app.LogOutput = f
	}

	application, err := app.New(opts.app)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	if err := application.Open(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	for _, r := range opts.folds {
		application.AddRegion(r.start, r.end, "region")
	}

	u, err := newUI(application)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := u.run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var folds foldList
	var showVersion bool

	flag.StringVar(&opts.app.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.app.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.app.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Var(&folds, "fold", "Fold range as START:END (1-based, repeatable)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "foldview - fold-preview file viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: foldview [options] file\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  j/k         move the cursor\n")
		fmt.Fprintf(os.Stderr, "  g/G         jump to the first/last line\n")
		fmt.Fprintf(os.Stderr, "  za, space   toggle the fold at the cursor\n")
		fmt.Fprintf(os.Stderr, "  q, Esc      quit\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  foldview main.go                     Folds from the configured language server\n")
		fmt.Fprintf(os.Stderr, "  foldview -fold 3:10 -fold 14:20 f.go Manual folds, no language server\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("foldview %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.app.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.app.LogLevel)
		os.Exit(1)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	opts.app.File = flag.Arg(0)
	opts.folds = folds

	return opts
}
