// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the carchive binary.
//
// A [Command] tree is built once in main and executed with
// [Command.Execute]. Commands declare their flags as a pflag.FlagSet
// factory and their behavior as a Run function; the framework handles
// dispatch, --help, and typo suggestions for unknown commands and
// flags. Help output goes to the root command's Output writer.
//
// [ExitError] lets a command choose its exit status after printing its
// own report. [NewLogger] builds the slog logger from the configured
// format and level.
package cli
