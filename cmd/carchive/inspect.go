// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/carchive/cmd/carchive/cli"
	"github.com/bureau-foundation/carchive/lib/codec"
	"github.com/bureau-foundation/carchive/lib/node"
)

type inspectOptions struct {
	limit    int
	kind     string
	maxWidth int
}

func (a *application) inspectCommand() *cli.Command {
	var (
		options globalOptions
		inspect inspectOptions
	)
	return &cli.Command{
		Name:    "inspect",
		Summary: "Print records in CBOR diagnostic notation",
		Description: `Print the archive header, then one line per section: the section's
stream offset, its identifier, its record kind, and the record payload
in CBOR diagnostic notation (RFC 8949).

Records are not validated beyond their leading kind, so inspect can show
records that parse rejects. A section whose payload is not CBOR or has
no valid kind is printed as "invalid"; if any are found the command
exits with status 1 after printing everything else.`,
		Usage: "carchive inspect [flags] <file>",
		Examples: []cli.Example{
			{
				Description: "Show the first ten records",
				Command:     "carchive inspect --limit 10 epoch-0.car",
			},
			{
				Description: "Show only blocks, untruncated",
				Command:     "carchive inspect --kind block --max-width 0 epoch-0.car",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.IntVarP(&inspect.limit, "limit", "n", 0, "stop after printing this many records (0 for all)")
			flagSet.StringVar(&inspect.kind, "kind", "", "only print records of this kind (e.g. block, transaction)")
			flagSet.IntVar(&inspect.maxWidth, "max-width", 200, "truncate each line to this many columns (0 for no limit)")
			options.register(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			path, err := requireArchive("inspect", args)
			if err != nil {
				return err
			}
			if inspect.limit < 0 {
				return fmt.Errorf("--limit must not be negative, got %d", inspect.limit)
			}
			if inspect.maxWidth < 0 {
				return fmt.Errorf("--max-width must not be negative, got %d", inspect.maxWidth)
			}
			s, err := a.open(&options)
			if err != nil {
				return err
			}
			defer s.Close()

			invalid, err := inspectArchive(ctx, s, path, inspect, newInspectStyles(s.renderer), a.stdout)
			if err != nil {
				return err
			}
			if invalid > 0 {
				fmt.Fprintf(a.stderr, "%d invalid records in %s\n", invalid, path)
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

type inspectStyles struct {
	offset  lipgloss.Style
	kind    lipgloss.Style
	invalid lipgloss.Style
}

func newInspectStyles(renderer *lipgloss.Renderer) inspectStyles {
	return inspectStyles{
		offset:  renderer.NewStyle().Foreground(lipgloss.Color("8")),
		kind:    renderer.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		invalid: renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// inspectArchive prints the header and matching records to w and
// returns how many sections held no decodable kind.
func inspectArchive(ctx context.Context, s *session, path string, options inspectOptions, styles inspectStyles, w io.Writer) (int, error) {
	var filter *node.Kind
	if options.kind != "" {
		kind, err := node.ParseKind(options.kind)
		if err != nil {
			return 0, fmt.Errorf("--kind: %w", err)
		}
		filter = &kind
	}

	reader, err := s.openArchive(path)
	if err != nil {
		return 0, err
	}

	header, err := reader.ReadHeader()
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := writeLine(w, options.maxWidth, styles.kind.Render("header")+" "+diagnose(header)); err != nil {
		return 0, err
	}

	invalid, printed := 0, 0
	for options.limit == 0 || printed < options.limit {
		if err := ctx.Err(); err != nil {
			return invalid, err
		}
		raw, err := reader.ReadNode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return invalid, fmt.Errorf("reading %s: %w", path, err)
		}

		var label string
		kind, kindErr := node.PeekKind(raw.Payload())
		if kindErr != nil {
			invalid++
			s.logger.Debug("record has no valid kind", "offset", raw.Offset, "id", raw.ID, "error", kindErr)
			label = styles.invalid.Render("invalid")
		} else {
			label = styles.kind.Render(kind.String())
		}
		if filter != nil && (kindErr != nil || kind != *filter) {
			continue
		}

		line := fmt.Sprintf("%s %s %s %s", styles.offset.Render(fmt.Sprintf("%d", raw.Offset)), raw.ID, label, diagnose(raw.Payload()))
		if err := writeLine(w, options.maxWidth, line); err != nil {
			return invalid, err
		}
		printed++
	}
	return invalid, nil
}

// diagnose renders the first CBOR item of data and notes any bytes
// left after it. Such a payload has no valid kind, so inspect also
// counts it as invalid.
func diagnose(data []byte) string {
	notation, rest, err := codec.DiagnoseFirst(data)
	if err != nil {
		return "invalid CBOR: " + err.Error()
	}
	if len(rest) > 0 {
		return fmt.Sprintf("%s +%d trailing bytes", notation, len(rest))
	}
	return notation
}

func writeLine(w io.Writer, maxWidth int, line string) error {
	if maxWidth > 0 {
		line = ansi.Truncate(line, maxWidth, "…")
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
