// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package varint

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxLen64 is the maximum encoded length of a 64-bit varint.
const MaxLen64 = binary.MaxVarintLen64

// ErrInvalid is returned for an encoding that runs past MaxLen64
// bytes, overflows 64 bits in its final byte, or is truncated.
var ErrInvalid = errors.New("varint: invalid varint")

// Decode reads one unsigned LEB128 integer from the start of buf and
// returns the value and the number of bytes consumed.
//
// The tenth byte may only contribute the single remaining bit of a
// uint64, so it must be 0x00 or 0x01. [binary.Uvarint] enforces this;
// Decode folds its two failure signals (n == 0 for a short buffer,
// n < 0 for overflow) into ErrInvalid.
func Decode(buf []byte) (uint64, int, error) {
	value, n := binary.Uvarint(buf)
	if n <= 0 {
		return 0, 0, ErrInvalid
	}
	return value, n, nil
}

// Read reads one unsigned LEB128 integer from r using
// [binary.ReadUvarint], which applies the same termination and
// overflow rules as [Decode].
//
// If r reports io.EOF before the first byte, Read returns io.EOF
// unchanged so callers can detect a clean end of input. An EOF after
// at least one byte has been consumed is io.ErrUnexpectedEOF. Any
// other read error is returned as-is. Overflow is ErrInvalid.
func Read(r io.ByteReader) (uint64, error) {
	source := &trackingReader{reader: r}
	value, err := binary.ReadUvarint(source)
	switch {
	case err == nil:
		return value, nil
	case source.err == nil:
		// The source never failed, so the error is the overflow
		// sentinel encoding/binary keeps unexported.
		return 0, ErrInvalid
	case source.count > 0 && errors.Is(source.err, io.EOF):
		return 0, io.ErrUnexpectedEOF
	default:
		return 0, source.err
	}
}

// trackingReader records the source's own failure so Read can tell
// it apart from an encoding error.
type trackingReader struct {
	reader io.ByteReader
	count  int
	err    error
}

func (t *trackingReader) ReadByte() (byte, error) {
	b, err := t.reader.ReadByte()
	if err != nil {
		t.err = err
		return b, err
	}
	t.count++
	return b, nil
}

// Append appends the LEB128 encoding of value to buf. The archive
// format is read-only in this module; Append exists for building
// fixtures and for re-encoding identifiers.
func Append(buf []byte, value uint64) []byte {
	return binary.AppendUvarint(buf, value)
}
