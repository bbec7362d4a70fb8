// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dag

import (
	"errors"
	"fmt"
	"hash/crc64"
	"hash/fnv"

	"github.com/bureau-foundation/carchive/lib/identifier"
	"github.com/bureau-foundation/carchive/lib/node"
)

var (
	ErrMissedIdentifier  = errors.New("dag: linked record not in batch")
	ErrWrongLinkedKind   = errors.New("dag: linked record is not a DataFrame")
	ErrInvalidChecksum   = errors.New("dag: reassembled data does not match checksum")
	ErrContinuationCycle = errors.New("dag: data frame continuation does not terminate")
)

// MissingLinkError names a continuation link that does not resolve
// within the batch.
type MissingLinkError struct {
	ID identifier.Identifier
}

func (e *MissingLinkError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissedIdentifier, e.ID)
}

func (e *MissingLinkError) Unwrap() error { return ErrMissedIdentifier }

// LinkKindError names a continuation link that resolves to a record
// of the wrong kind.
type LinkKindError struct {
	ID   identifier.Identifier
	Kind node.Kind
}

func (e *LinkKindError) Error() string {
	return fmt.Sprintf("%v: %s is a %s", ErrWrongLinkedKind, e.ID, e.Kind)
}

func (e *LinkKindError) Unwrap() error { return ErrWrongLinkedKind }

// ChecksumError carries both computed checksums and the declared one.
type ChecksumError struct {
	CRC64    uint64
	FNV      uint64
	Expected uint64
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%v: crc64 %d, fnv %d, expected %d", ErrInvalidChecksum, e.CRC64, e.FNV, e.Expected)
}

func (e *ChecksumError) Unwrap() error { return ErrInvalidChecksum }

var crcTable = crc64.MakeTable(crc64.ISO)

// Checksum returns the CRC-64 (ISO polynomial) of data, the checksum
// current archive writers store in a chain's first frame.
func Checksum(data []byte) uint64 {
	return crc64.Checksum(data, crcTable)
}

// LegacyChecksum returns the 64-bit FNV-1a hash of data, the checksum
// stored by early archive writers.
func LegacyChecksum(data []byte) uint64 {
	hash := fnv.New64a()
	hash.Write(data)
	return hash.Sum64()
}

// Verify checks data against expected, accepting either checksum
// algorithm.
func Verify(data []byte, expected uint64) error {
	crc := Checksum(data)
	if crc == expected {
		return nil
	}
	legacy := LegacyChecksum(data)
	if legacy == expected {
		return nil
	}
	return &ChecksumError{CRC64: crc, FNV: legacy, Expected: expected}
}

// Reassemble returns the complete buffer that start heads.
//
// The buffer is start's data followed by the data of every frame
// start.Next links to, in order. Walking then continues from the last
// of those frames, appending everything its Next links to, until a
// frame with no continuation is reached. Frames linked from earlier
// entries of a multi-link Next are appended but not walked.
//
// If start carries a checksum the buffer must match it under
// [Checksum] or [LegacyChecksum]. Without one the buffer is returned
// unverified.
//
// The result is a new slice; start and the batch are not modified.
func (b *Batch) Reassemble(start *node.DataFrame) ([]byte, error) {
	data := make([]byte, len(start.Data))
	copy(data, start.Data)

	current := start
	// Frames carry their own index, so a chain never appends the same
	// record twice. Appending more frames than the batch holds means
	// the links loop.
	steps := 0
	for len(current.Next) > 0 {
		if steps > b.Len() {
			return nil, fmt.Errorf("%w after %d frames", ErrContinuationCycle, steps)
		}
		for _, id := range current.Next {
			record, ok := b.Get(id)
			if !ok {
				return nil, &MissingLinkError{ID: id}
			}
			frame, ok := record.(*node.DataFrame)
			if !ok {
				return nil, &LinkKindError{ID: id, Kind: record.Kind()}
			}
			data = append(data, frame.Data...)
			current = frame
			steps++
		}
	}

	if start.Checksum != nil {
		if err := Verify(data, *start.Checksum); err != nil {
			return nil, err
		}
	}
	return data, nil
}
