// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package varint decodes unsigned LEB128 integers, the length prefix
// used throughout the archive format.
//
// Two entry points share one set of rules:
//
//   - [Decode] works on an in-memory byte slice and reports how many
//     bytes it consumed. The identifier decoder uses it.
//   - [Read] pulls one byte at a time from an [io.ByteReader]. The
//     framed entry reader uses it for header and section lengths, and
//     relies on Read passing a leading io.EOF through untouched.
//
// Encodings longer than ten bytes, or whose tenth byte would overflow
// a uint64, fail with [ErrInvalid].
package varint
