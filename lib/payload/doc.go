// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package payload decompresses reassembled record buffers.
//
// Transaction metadata and block rewards are stored compressed inside
// their data frames. Archive writers have used zstd for both; LZ4
// frames appear in some re-packed archives. [Decompress] detects the
// format from the leading magic number and returns uncompressed
// buffers unchanged, so callers can pass every reassembled buffer
// through it without knowing which writer produced the archive.
//
// An empty buffer is not an error. Transactions whose metadata was
// never recorded carry an empty metadata frame, and [Decompress]
// returns it as-is with [None].
package payload
