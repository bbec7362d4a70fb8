// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/bureau-foundation/carchive/lib/identifier"
)

var uniqueCounter atomic.Uint64

// UniqueID returns a string of the form "prefix-N" where N is a
// monotonically increasing integer.
//
//	seed := testutil.UniqueID("frame")  // "frame-1", "frame-2", ...
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}

// NextID returns a fresh dag-cbor identifier that no other call in
// this process has returned.
func NextID() identifier.Identifier {
	return ID(UniqueID("record"))
}
