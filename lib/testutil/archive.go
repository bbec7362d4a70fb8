// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/multiformats/go-multihash"

	"github.com/bureau-foundation/carchive/lib/codec"
	"github.com/bureau-foundation/carchive/lib/identifier"
	"github.com/bureau-foundation/carchive/lib/varint"
)

// TB is the subset of testing.TB the helpers need. Accepting an
// interface lets rapid's *rapid.T use the helpers as well.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

const (
	codecRaw     = 0x55
	codecDagCBOR = 0x71
)

// Hex decodes a hex string or fails the test.
func Hex(t TB, text string) []byte {
	t.Helper()
	data, err := hex.DecodeString(text)
	if err != nil {
		t.Fatalf("decoding hex %q: %v", text, err)
	}
	return data
}

// ID returns a version 1 dag-cbor identifier whose digest is the
// SHA2-256 of seed. The same seed always yields the same identifier.
func ID(seed string) identifier.Identifier {
	return sum(codecDagCBOR, seed)
}

// RawID is like [ID] with the raw codec.
func RawID(seed string) identifier.Identifier {
	return sum(codecRaw, seed)
}

func sum(codec uint64, seed string) identifier.Identifier {
	hash, err := multihash.Sum([]byte(seed), multihash.SHA2_256, -1)
	if err != nil {
		panic("testutil: hashing seed: " + err.Error())
	}
	decoded, err := multihash.Decode(hash)
	if err != nil {
		panic("testutil: decoding multihash: " + err.Error())
	}
	return identifier.New(1, codec, decoded.Code, decoded.Digest)
}

// Link returns the CBOR value archive writers use to embed id in a
// record: tag 42 around a zero marker byte and the identifier bytes.
func Link(id identifier.Identifier) codec.Tag {
	return codec.Tag{Number: codec.LinkTag, Content: append([]byte{0x00}, id.Bytes()...)}
}

// Links returns a CBOR array of links. The result is never nil, so it
// encodes as an empty array rather than null.
func Links(ids ...identifier.Identifier) []any {
	links := make([]any, len(ids))
	for i, id := range ids {
		links[i] = Link(id)
	}
	return links
}

// DataFrame returns the tuple for a data frame record. checksum, index,
// and total are encoded as null when nil.
func DataFrame(checksum, index, total *uint64, data []byte, next ...identifier.Identifier) []any {
	if data == nil {
		data = []byte{}
	}
	return []any{uint64(6), optional(checksum), optional(index), optional(total), data, Links(next...)}
}

// Checksum returns a pointer to value, for the optional fields of
// [DataFrame].
func Checksum(value uint64) *uint64 { return &value }

func optional(value *uint64) any {
	if value == nil {
		return nil
	}
	return *value
}

// Encode encodes value with the deterministic CBOR encoder.
func Encode(t TB, value any) []byte {
	t.Helper()
	data, err := codec.Marshal(value)
	if err != nil {
		t.Fatalf("encoding fixture %v: %v", value, err)
	}
	return data
}

// Record pairs an identifier with the CBOR value of its payload.
type Record struct {
	ID    identifier.Identifier
	Value any
}

// Section returns the section bytes for one record: identifier
// encoding followed by the encoded payload, without a length prefix.
func Section(t TB, record Record) []byte {
	t.Helper()
	return append(record.ID.Bytes(), Encode(t, record.Value)...)
}

// Frame prefixes data with its varint length.
func Frame(data []byte) []byte {
	return append(varint.Append(nil, uint64(len(data))), data...)
}

// Header returns a CBOR archive header naming roots.
func Header(t TB, roots ...identifier.Identifier) []byte {
	t.Helper()
	return Encode(t, map[string]any{"version": uint64(1), "roots": Links(roots...)})
}

// Archive assembles a complete archive from a header and records in
// the given order.
func Archive(t TB, header []byte, records ...Record) []byte {
	t.Helper()
	archive := Frame(header)
	for _, record := range records {
		archive = append(archive, Frame(Section(t, record))...)
	}
	return archive
}

// WriteArchive writes data to a file in a fresh temporary directory
// and returns its path.
func WriteArchive(t interface {
	TB
	TempDir() string
}, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.car")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}
	return path
}
