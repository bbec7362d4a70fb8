// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package node

import (
	"errors"
	"fmt"
)

// Sentinel errors carried inside [*FieldError]. Test with errors.Is.
var (
	// ErrMalformed means the payload is not a single well-formed CBOR
	// data item.
	ErrMalformed = errors.New("node: malformed CBOR payload")

	// ErrUnknownKind means the leading element is missing, is not an
	// integer, or is outside 0..6. A bignum kind is always unknown.
	ErrUnknownKind = errors.New("node: unknown record kind")

	// ErrKindMismatch means a tuple's leading element names a
	// different kind than the decoder expected, either at the top
	// level or in a nested record such as a Transaction's data frame.
	ErrKindMismatch = errors.New("node: record kind mismatch")

	// ErrWrongType means an element has the wrong CBOR type for its
	// position, including null in a required position, an integer
	// outside [-2^63, 2^64), and a hash of the wrong length.
	ErrWrongType = errors.New("node: wrong element type")

	// ErrUnexpectedElements means a tuple has more elements than its
	// kind declares.
	ErrUnexpectedElements = errors.New("node: unexpected tuple elements")

	// ErrMissingElement means a required element is absent because
	// the tuple is too short.
	ErrMissingElement = errors.New("node: missing tuple element")

	// ErrInvalidLink means an embedded link is not a marker byte
	// followed by exactly one identifier. The identifier decoding
	// error, if any, is also in the chain.
	ErrInvalidLink = errors.New("node: invalid link")
)

// FieldError reports a schema violation at a specific position in a
// record. Path names the position the way a reader would look for it
// in the record type, for example "Block.entries[3]" or
// "Transaction.data.next[0]".
type FieldError struct {
	Path string
	Err  error

	// Got and Want describe the offending value and what the schema
	// expected there. Either may be empty.
	Got  string
	Want string
}

func (e *FieldError) Error() string {
	message := fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
	switch {
	case e.Got != "" && e.Want != "":
		message += fmt.Sprintf(" (got %s, want %s)", e.Got, e.Want)
	case e.Got != "":
		message += fmt.Sprintf(" (got %s)", e.Got)
	case e.Want != "":
		message += fmt.Sprintf(" (want %s)", e.Want)
	}
	return message
}

func (e *FieldError) Unwrap() error { return e.Err }
