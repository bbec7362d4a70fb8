// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// carchive reads block-history archives: length-framed, content
// addressed records grouped into blocks. It counts sections, tallies
// decoded records per block, and prints individual records in CBOR
// diagnostic notation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/carchive/lib/clock"
	"github.com/bureau-foundation/carchive/lib/version"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own report (like inspect) return an
		// ExitError with the desired exit code.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Handle --version before dispatch so it works without a command.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("carchive %s\n", version.Full())
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &application{
		stdout: os.Stdout,
		stderr: os.Stderr,
		clock:  clock.Real(),
	}
	return app.root().Execute(ctx, os.Args[1:])
}
