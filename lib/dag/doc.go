// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package dag groups decoded records into per-block batches and
// reassembles payloads split across data frames.
//
// [ReadUntilBlock] pulls records from a reader until it has read one
// Block. Because archives are written children first, the resulting
// [Batch] holds every transaction, entry, rewards record, and data
// frame the Block reaches.
//
// [Batch.Reassemble] follows a data frame's continuation links within
// the batch, concatenates the chunks, and checks the result against
// the checksum in the first frame. Two checksum algorithms are
// accepted because archives from different writer versions coexist:
// CRC-64 with the ISO polynomial, and the 64-bit FNV-1a hash used by
// early writers.
package dag
