// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration shared by every package
// that touches record payloads.
//
// Record payloads are positional CBOR arrays, not maps, and their
// element types vary by record kind and by archive writer version
// (an optional field may be null, absent, or present). Decoding goes
// through a generic value first:
//
//	value, err := codec.DecodeValue(payload)
//
// and the record decoders in lib/node walk the resulting []any,
// checking each element's type themselves. That keeps the strictness
// rules (exact element counts, null versus absent) in one place
// instead of spread across struct tags.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2) and is
// used by test fixtures and by nothing on the read path.
//
// [DiagnoseFirst] renders payloads in diagnostic notation for the
// inspect command, which also reports bytes left after the item.
package codec
