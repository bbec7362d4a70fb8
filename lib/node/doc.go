// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package node decodes archive record payloads into typed records.
//
// Every payload is a CBOR array whose first element is the record
// [Kind]. The remaining elements are positional and their layout is
// fixed per kind:
//
//	Transaction  [0, data frame, metadata frame, slot, index?]
//	Entry        [1, num_hashes, hash, [link...]]
//	Block        [2, slot, [[entry_end, shred_end]...], [link...], [parent, blocktime, height?], link]
//	Subset       [3, first, last, [link...]]
//	Epoch        [4, epoch, [link...]]
//	Rewards      [5, slot, data frame]
//	DataFrame    [6, checksum?, index?, total?, data, [link...]?]
//
// Fields marked ? may be null or missing from the end of the array;
// both decode as absent (a nil pointer or empty slice). Decoding is
// otherwise strict. An array longer than its kind allows, a required
// element that is missing or null, and an element of the wrong CBOR
// type all fail with a [*FieldError] naming the position, such as
// "Block.entries[3]". Nested data frames and the leading kind element
// of every tuple are checked the same way.
//
// Integers are read as their 64-bit two's complement bit pattern, so
// a checksum written as a negative CBOR integer decodes to the same
// uint64 the writer hashed. Integers outside [-2^63, 2^64) have no
// such pattern and fail; an Entry hash must be exactly 32 bytes.
//
// A link is CBOR tag 42 around a byte string holding a zero marker
// byte and one identifier encoding (see lib/identifier).
package node
