// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package carreader reads the framing of an archive stream.
//
// An archive is a varint-prefixed header followed by varint-prefixed
// sections, each holding one identifier and one record payload:
//
//	varint(len) header
//	varint(len) identifier payload
//	varint(len) identifier payload
//	...
//
// [Reader.ReadNode] returns each section as a [RawNode] with its
// identifier decoded and its payload left as bytes for lib/node.
// [Reader.ReadSection] skips the identifier for callers that only need
// to count or copy sections.
//
// Both return a bare io.EOF at a clean end of stream, which is the
// only non-error way for reading to stop. Header and section lengths
// are checked against [Limits] before anything is allocated.
//
// Reads are strictly sequential. The Reader owns its source; callers
// wanting parallelism open one Reader per archive.
package carreader
