// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/carchive/cmd/carchive/cli"
)

// cancelCheckInterval is how many sections count reads between checks
// of the context.
const cancelCheckInterval = 4096

func (a *application) countCommand() *cli.Command {
	var options globalOptions
	return &cli.Command{
		Name:    "count",
		Summary: "Count sections without decoding records",
		Description: `Read every length-framed section of an archive and report how many
there are. Identifiers and records are not decoded, so this is the
fastest way to check that an archive is well framed end to end.`,
		Usage: "carchive count [flags] <file>",
		Examples: []cli.Example{
			{
				Description: "Count sections quietly",
				Command:     "carchive count --no-progress epoch-0.car",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("count", pflag.ContinueOnError)
			options.register(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			path, err := requireArchive("count", args)
			if err != nil {
				return err
			}
			s, err := a.open(&options)
			if err != nil {
				return err
			}
			defer s.Close()
			return countArchive(ctx, s, path, a.stdout)
		},
	}
}

func countArchive(ctx context.Context, s *session, path string, stdout io.Writer) error {
	reader, err := s.openArchive(path)
	if err != nil {
		return err
	}
	defer s.progress.clear()

	header, err := reader.ReadHeader()
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for {
		if reader.Sections()%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if _, err := reader.ReadSection(); err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		s.progress.update(func() string {
			return fmt.Sprintf("sections %s  read %s",
				humanize.Comma(reader.Sections()), humanize.Bytes(uint64(reader.Offset())))
		})
	}
	s.progress.clear()

	s.report.section(path)
	s.report.bytes("header", uint64(len(header)))
	s.report.count("sections", uint64(reader.Sections()))
	s.report.bytes("size", uint64(reader.Offset()))
	return s.report.write(stdout)
}
