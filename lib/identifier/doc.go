// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package identifier decodes the self-describing content addresses
// that prefix every archive section and that records embed as links.
//
// The binary layout is four varints followed by the digest:
//
//	version (0 or 1) | codec | hash function | digest length | digest
//
// The codec is always present on the wire but only meaningful for
// version 1. A version 0 identifier must name a 32-byte sha2-256
// digest; anything else fails with [ErrInvalidV0].
//
// [Decode] returns the identifier and the offset where the
// record payload begins; [DecodeExact] is the form used for links,
// where nothing may follow the digest.
//
// Digests are never verified against payloads here. An [Identifier]
// is a name, not a proof.
//
// Text rendering and parsing go through go-cid and go-multihash so
// identifiers print in the familiar "bafy..." form used by archive
// tooling.
package identifier
