// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil builds archive fixtures for tests.
//
// Production code never writes archives, so tests construct them from
// CBOR values:
//
//	frame := testutil.NextID()
//	archive := testutil.Archive(t, testutil.Header(t),
//		testutil.Record{ID: frame, Value: testutil.DataFrame(nil, nil, nil, data)},
//	)
//
// [ID] derives identifiers from seed strings through go-multihash so
// fixtures are stable across runs. [Link] and [Links] produce the tag
// 42 form archive writers embed in records.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
