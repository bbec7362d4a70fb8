// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identifier

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/bureau-foundation/carchive/lib/varint"
)

// MaxDigestLength is the largest digest accepted in an identifier.
// Matches the 64-byte multihash bound used by the archive writers.
const MaxDigestLength = 64

// Sentinel errors carried inside [*Error].
var (
	ErrUnknownVersion = errors.New("identifier: unknown version (expected 0 or 1)")
	ErrNotEnoughBytes = errors.New("identifier: not enough bytes for digest")
	ErrDigestTooLong  = errors.New("identifier: digest too long")
	ErrTrailingBytes  = errors.New("identifier: trailing bytes after digest")
	ErrInvalidV0      = errors.New("identifier: version 0 requires a 32-byte sha2-256 digest")
)

// Version 0 identifiers are bare sha2-256 multihashes.
const (
	v0HashFunction = multihash.SHA2_256
	v0DigestLength = 32
)

// Identifier is a decoded content address: version, codec, hash
// function code, and digest. Identifiers are comparable and are used
// directly as map keys.
//
// Version 0 identifiers carry no codec; [New] zeroes it so that two
// version 0 identifiers with the same digest compare equal regardless
// of the codec bytes that happened to be on the wire.
type Identifier struct {
	version      uint64
	codec        uint64
	hashFunction uint64

	// digest is stored as a string so the struct stays comparable.
	digest string
}

// New constructs an Identifier. The digest is copied.
func New(version, codec, hashFunction uint64, digest []byte) Identifier {
	if version == 0 {
		codec = 0
	}
	return Identifier{
		version:      version,
		codec:        codec,
		hashFunction: hashFunction,
		digest:       string(digest),
	}
}

// Version returns the identifier version (0 or 1).
func (id Identifier) Version() uint64 { return id.version }

// Codec returns the content codec. Always 0 for version 0.
func (id Identifier) Codec() uint64 { return id.codec }

// HashFunction returns the multihash function code.
func (id Identifier) HashFunction() uint64 { return id.hashFunction }

// Digest returns a copy of the digest bytes.
func (id Identifier) Digest() []byte { return []byte(id.digest) }

// IsZero reports whether id is the zero Identifier.
func (id Identifier) IsZero() bool { return id == Identifier{} }

// Bytes returns the archive encoding of id: varint version, varint
// codec, varint hash function, varint digest length, digest. This is
// the exact inverse of [Decode].
func (id Identifier) Bytes() []byte {
	buf := make([]byte, 0, 4*varint.MaxLen64+len(id.digest))
	buf = varint.Append(buf, id.version)
	buf = varint.Append(buf, id.codec)
	buf = varint.Append(buf, id.hashFunction)
	buf = varint.Append(buf, uint64(len(id.digest)))
	return append(buf, id.digest...)
}

// String returns the multibase text form: base32 "b..." for version 1,
// base58btc for version 0.
func (id Identifier) String() string {
	if id.IsZero() {
		return "<zero identifier>"
	}
	hash, err := multihash.Encode([]byte(id.digest), id.hashFunction)
	if err != nil {
		return id.rawString()
	}
	if id.version == 0 {
		// Base58 CIDv0 text only exists for 32-byte SHA2-256 digests.
		if id.hashFunction != multihash.SHA2_256 || len(id.digest) != 32 {
			return id.rawString()
		}
		return cid.NewCidV0(multihash.Multihash(hash)).String()
	}
	return cid.NewCidV1(id.codec, multihash.Multihash(hash)).String()
}

func (id Identifier) rawString() string {
	return fmt.Sprintf("<identifier v%d codec=%#x hash=%#x digest=%x>",
		id.version, id.codec, id.hashFunction, id.digest)
}

// Parse parses the multibase text form produced by [Identifier.String].
func Parse(text string) (Identifier, error) {
	parsed, err := cid.Decode(text)
	if err != nil {
		return Identifier{}, fmt.Errorf("parsing identifier %q: %w", text, err)
	}
	decoded, err := multihash.Decode(parsed.Hash())
	if err != nil {
		return Identifier{}, fmt.Errorf("parsing identifier %q multihash: %w", text, err)
	}
	return New(parsed.Version(), parsed.Type(), decoded.Code, decoded.Digest), nil
}

// MustParse is like [Parse] but panics on error. For tests and
// package-level fixtures.
func MustParse(text string) Identifier {
	id, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return id
}

// Decode parses an identifier from the start of data and returns it
// along with the number of bytes the identifier occupied. The bytes
// from that offset onward are the record payload.
func Decode(data []byte) (Identifier, int, error) {
	offset := 0

	readField := func(field string) (uint64, error) {
		value, consumed, err := varint.Decode(data[offset:])
		if err != nil {
			return 0, &Error{Field: field, Offset: offset, Err: err}
		}
		offset += consumed
		return value, nil
	}

	version, err := readField("version")
	if err != nil {
		return Identifier{}, 0, err
	}
	if version != 0 && version != 1 {
		return Identifier{}, 0, &Error{
			Field:  "version",
			Offset: 0,
			Err:    ErrUnknownVersion,
			Detail: fmt.Sprintf("got %d", version),
		}
	}

	codec, err := readField("codec")
	if err != nil {
		return Identifier{}, 0, err
	}
	hashOffset := offset
	hashFunction, err := readField("hash function")
	if err != nil {
		return Identifier{}, 0, err
	}
	digestLength, err := readField("digest length")
	if err != nil {
		return Identifier{}, 0, err
	}

	if digestLength > MaxDigestLength {
		return Identifier{}, 0, &Error{
			Field:  "digest",
			Offset: offset,
			Err:    ErrDigestTooLong,
			Detail: fmt.Sprintf("length %d, max %d", digestLength, MaxDigestLength),
		}
	}
	remaining := len(data) - offset
	if uint64(remaining) < digestLength {
		return Identifier{}, 0, &Error{
			Field:  "digest",
			Offset: offset,
			Err:    ErrNotEnoughBytes,
			Detail: fmt.Sprintf("have %d, need %d", remaining, digestLength),
		}
	}

	if version == 0 && (hashFunction != v0HashFunction || digestLength != v0DigestLength) {
		return Identifier{}, 0, &Error{
			Field:  "hash function",
			Offset: hashOffset,
			Err:    ErrInvalidV0,
			Detail: fmt.Sprintf("hash function 0x%x, digest length %d", hashFunction, digestLength),
		}
	}

	digest := data[offset : offset+int(digestLength)]
	offset += int(digestLength)

	return New(version, codec, hashFunction, digest), offset, nil
}

// DecodeExact parses data that must contain exactly one identifier
// and nothing else, as in an embedded link.
func DecodeExact(data []byte) (Identifier, error) {
	id, consumed, err := Decode(data)
	if err != nil {
		return Identifier{}, err
	}
	if consumed != len(data) {
		return Identifier{}, &Error{
			Field:  "digest",
			Offset: consumed,
			Err:    ErrTrailingBytes,
			Detail: fmt.Sprintf("%d unexpected bytes", len(data)-consumed),
		}
	}
	return id, nil
}

// Error describes a malformed identifier encoding.
type Error struct {
	// Field names the identifier component being decoded: "version",
	// "codec", "hash function", "digest length", or "digest".
	Field string

	// Offset is the byte offset within the identifier encoding where
	// the failing component starts.
	Offset int

	// Err is the underlying cause: one of the sentinels in this
	// package or [varint.ErrInvalid].
	Err error

	// Detail carries values useful for diagnosis, such as the
	// declared and available digest lengths.
	Detail string
}

func (e *Error) Error() string {
	message := fmt.Sprintf("decoding identifier %s at offset %d: %v", e.Field, e.Offset, e.Err)
	if e.Detail != "" {
		message += " (" + e.Detail + ")"
	}
	return message
}

func (e *Error) Unwrap() error { return e.Err }
