// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/carchive/cmd/carchive/cli"
	"github.com/bureau-foundation/carchive/lib/carreader"
	"github.com/bureau-foundation/carchive/lib/clock"
	"github.com/bureau-foundation/carchive/lib/config"
	"github.com/bureau-foundation/carchive/lib/version"
)

// application holds the process-level dependencies every command
// shares. Tests substitute buffers and a fake clock.
type application struct {
	stdout io.Writer
	stderr io.Writer
	clock  clock.Clock
}

// globalOptions are the flags every command accepts.
type globalOptions struct {
	configPath string
	logLevel   string
	color      string
	noProgress bool
}

func (o *globalOptions) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.configPath, "config", "", "path to carchive.yaml (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")
	flagSet.StringVar(&o.color, "color", "auto", "color output: auto, always, never")
	flagSet.BoolVar(&o.noProgress, "no-progress", false, "never draw the progress line")
}

func (a *application) root() *cli.Command {
	return &cli.Command{
		Name:   "carchive",
		Output: a.stderr,
		Description: `carchive: read block-history archives.

An archive is a header followed by length-framed sections, each holding
a content identifier and a CBOR record. Records are written children
first, so every block arrives after the entries, transactions, and data
frames it links to.`,
		Subcommands: []*cli.Command{
			a.countCommand(),
			a.parseCommand(),
			a.inspectCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string) error {
					fmt.Fprintf(a.stdout, "carchive %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Count sections without decoding records",
				Command:     "carchive count epoch-0.car",
			},
			{
				Description: "Tally records and check every payload reassembles",
				Command:     "carchive parse --decode epoch-0.car",
			},
			{
				Description: "Show the first ten records",
				Command:     "carchive inspect --limit 10 epoch-0.car",
			},
		},
	}
}

// session is the per-command state built from flags and config.
type session struct {
	config   *config.Config
	logger   *slog.Logger
	progress *progress
	report   *report
	closers  []io.Closer

	// renderer styles output written to stdout.
	renderer *lipgloss.Renderer
}

// open resolves configuration and builds the logger, progress line, and
// report renderer for one command run.
func (a *application) open(options *globalOptions) (*session, error) {
	cfg, err := a.loadConfig(options.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if options.logLevel != "" {
		cfg.Log.Level = options.logLevel
	}
	if options.noProgress {
		cfg.Progress.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &session{config: cfg}

	logOutput := a.stderr
	if cfg.Log.File != "" {
		file, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		s.closers = append(s.closers, file)
		logOutput = file
	}
	level, _ := cfg.Log.SlogLevel()
	s.logger, err = cli.NewLogger(logOutput, cfg.Log.Format, level)
	if err != nil {
		s.Close()
		return nil, err
	}

	stdoutRenderer, err := newRenderer(a.stdout, options.color)
	if err != nil {
		s.Close()
		return nil, err
	}
	stderrRenderer, _ := newRenderer(a.stderr, options.color)

	s.renderer = stdoutRenderer
	s.report = newReport(stdoutRenderer)
	s.progress = newProgress(a.stderr, stderrRenderer, a.clock, cfg.Progress.Enabled && isTerminal(a.stderr),
		cfg.Progress.IntervalDuration(), terminalWidth(a.stderr))
	return s, nil
}

// loadConfig prefers --config, then CARCHIVE_CONFIG, then defaults.
func (a *application) loadConfig(path string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadFile(path)
	case os.Getenv(config.EnvironmentVariable) != "":
		return config.Load()
	default:
		return config.Default(), nil
	}
}

// openArchive opens path and returns a reader configured from the
// session. The caller closes the session, which closes the file.
func (s *session) openArchive(path string) (*carreader.Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, file)
	return carreader.NewWithOptions(file, carreader.Options{
		Limits:     s.config.Limits(),
		BufferSize: s.config.Reader.BufferSize,
		Logger:     s.logger.With("archive", path),
	}), nil
}

// Close releases files opened for the session.
func (s *session) Close() error {
	var first error
	for _, closer := range s.closers {
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

// newRenderer returns a lipgloss renderer for w honoring the --color
// choice. auto leaves detection to termenv.
func newRenderer(w io.Writer, color string) (*lipgloss.Renderer, error) {
	renderer := lipgloss.NewRenderer(w)
	switch color {
	case "auto":
	case "always":
		renderer.SetColorProfile(termenv.ANSI256)
	case "never":
		renderer.SetColorProfile(termenv.Ascii)
	default:
		return nil, fmt.Errorf("--color must be auto, always, or never, got %q", color)
	}
	return renderer, nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// terminalWidth returns the column count of w, or 0 if w is not a
// terminal.
func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// requireArchive checks that exactly one positional argument names the
// archive.
func requireArchive(command string, args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", fmt.Errorf("%s: archive path required", command)
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("%s: expected one archive path, got %d arguments", command, len(args))
	}
}
