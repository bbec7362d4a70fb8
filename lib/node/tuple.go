// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package node

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/bureau-foundation/carchive/lib/codec"
	"github.com/bureau-foundation/carchive/lib/identifier"
)

// linkMarker is the byte that precedes the identifier inside an
// embedded link.
const linkMarker = 0x00

// tuple walks one positional CBOR array. Every accessor takes the
// element index and the field name used in error paths.
type tuple struct {
	path   string
	values []any
}

// openTuple checks that value is an array of at most arity elements.
// Shorter arrays are allowed here; required accessors report the
// missing element.
func openTuple(path string, value any, arity int) (tuple, error) {
	values, ok := value.([]any)
	if !ok {
		return tuple{}, &FieldError{Path: path, Err: ErrWrongType, Got: describe(value), Want: "array"}
	}
	if len(values) > arity {
		return tuple{}, &FieldError{
			Path: path,
			Err:  ErrUnexpectedElements,
			Got:  fmt.Sprintf("%d elements", len(values)),
			Want: fmt.Sprintf("at most %d", arity),
		}
	}
	return tuple{path: path, values: values}, nil
}

func (t tuple) fieldPath(name string) string {
	return t.path + "." + name
}

// element returns the value at index. A required element that is
// absent or null is an error; an optional one reports present=false.
func (t tuple) element(index int, name string, required bool) (value any, present bool, err error) {
	if index >= len(t.values) {
		if required {
			return nil, false, &FieldError{Path: t.fieldPath(name), Err: ErrMissingElement}
		}
		return nil, false, nil
	}
	value = t.values[index]
	if value == nil {
		if required {
			return nil, false, &FieldError{Path: t.fieldPath(name), Err: ErrWrongType, Got: "null"}
		}
		return nil, false, nil
	}
	return value, true, nil
}

// checkKind verifies element 0 against want.
func (t tuple) checkKind(want Kind) error {
	value, _, err := t.element(0, "kind", true)
	if err != nil {
		return err
	}
	got, ok := asUint64(value)
	if !ok {
		if isBigInt(value) {
			return &FieldError{Path: t.fieldPath("kind"), Err: ErrUnknownKind, Got: describe(value)}
		}
		return &FieldError{Path: t.fieldPath("kind"), Err: ErrWrongType, Got: describe(value), Want: "integer"}
	}
	if Kind(got) != want {
		return &FieldError{Path: t.fieldPath("kind"), Err: ErrKindMismatch, Got: Kind(got).String(), Want: want.String()}
	}
	return nil
}

func (t tuple) unsigned(index int, name string) (uint64, error) {
	value, _, err := t.element(index, name, true)
	if err != nil {
		return 0, err
	}
	return toUint64(t.fieldPath(name), value)
}

func (t tuple) optionalUnsigned(index int, name string) (*uint64, error) {
	value, present, err := t.element(index, name, false)
	if err != nil || !present {
		return nil, err
	}
	result, err := toUint64(t.fieldPath(name), value)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (t tuple) signed(index int, name string) (int64, error) {
	value, _, err := t.element(index, name, true)
	if err != nil {
		return 0, err
	}
	result, err := toUint64(t.fieldPath(name), value)
	return int64(result), err
}

// fixedBytes is bytes with an exact length requirement.
func (t tuple) fixedBytes(index int, name string, size int) ([]byte, error) {
	data, err := t.bytes(index, name)
	if err != nil {
		return nil, err
	}
	if len(data) != size {
		return nil, &FieldError{
			Path: t.fieldPath(name),
			Err:  ErrWrongType,
			Got:  describe(data),
			Want: fmt.Sprintf("byte string of %d bytes", size),
		}
	}
	return data, nil
}

func (t tuple) bytes(index int, name string) ([]byte, error) {
	value, _, err := t.element(index, name, true)
	if err != nil {
		return nil, err
	}
	data, ok := value.([]byte)
	if !ok {
		return nil, &FieldError{Path: t.fieldPath(name), Err: ErrWrongType, Got: describe(value), Want: "byte string"}
	}
	return data, nil
}

func (t tuple) array(index int, name string) ([]any, error) {
	value, _, err := t.element(index, name, true)
	if err != nil {
		return nil, err
	}
	values, ok := value.([]any)
	if !ok {
		return nil, &FieldError{Path: t.fieldPath(name), Err: ErrWrongType, Got: describe(value), Want: "array"}
	}
	return values, nil
}

func (t tuple) link(index int, name string) (identifier.Identifier, error) {
	value, _, err := t.element(index, name, true)
	if err != nil {
		return identifier.Identifier{}, err
	}
	return parseLink(t.fieldPath(name), value)
}

func (t tuple) links(index int, name string) ([]identifier.Identifier, error) {
	values, err := t.array(index, name)
	if err != nil {
		return nil, err
	}
	return parseLinks(t.fieldPath(name), values)
}

// optionalLinks treats an absent or null list as empty.
func (t tuple) optionalLinks(index int, name string) ([]identifier.Identifier, error) {
	value, present, err := t.element(index, name, false)
	if err != nil || !present {
		return nil, err
	}
	values, ok := value.([]any)
	if !ok {
		return nil, &FieldError{Path: t.fieldPath(name), Err: ErrWrongType, Got: describe(value), Want: "array"}
	}
	return parseLinks(t.fieldPath(name), values)
}

func parseLinks(path string, values []any) ([]identifier.Identifier, error) {
	if len(values) == 0 {
		return nil, nil
	}
	links := make([]identifier.Identifier, len(values))
	for i, value := range values {
		link, err := parseLink(path+"["+strconv.Itoa(i)+"]", value)
		if err != nil {
			return nil, err
		}
		links[i] = link
	}
	return links, nil
}

// parseLink decodes an embedded link. Archive writers wrap the link
// bytes in CBOR tag 42; a bare byte string is accepted too.
func parseLink(path string, value any) (identifier.Identifier, error) {
	if tag, ok := value.(codec.Tag); ok {
		if tag.Number != codec.LinkTag {
			return identifier.Identifier{}, &FieldError{
				Path: path,
				Err:  ErrWrongType,
				Got:  describe(value),
				Want: fmt.Sprintf("tag %d", codec.LinkTag),
			}
		}
		value = tag.Content
	}
	data, ok := value.([]byte)
	if !ok {
		return identifier.Identifier{}, &FieldError{Path: path, Err: ErrWrongType, Got: describe(value), Want: "link"}
	}
	if len(data) == 0 {
		return identifier.Identifier{}, &FieldError{Path: path, Err: ErrInvalidLink, Got: "empty byte string"}
	}
	if data[0] != linkMarker {
		return identifier.Identifier{}, &FieldError{
			Path: path,
			Err:  ErrInvalidLink,
			Got:  fmt.Sprintf("marker %#02x", data[0]),
			Want: fmt.Sprintf("marker %#02x", linkMarker),
		}
	}
	id, err := identifier.DecodeExact(data[1:])
	if err != nil {
		return identifier.Identifier{}, &FieldError{Path: path, Err: fmt.Errorf("%w: %w", ErrInvalidLink, err)}
	}
	return id, nil
}

func toUint64(path string, value any) (uint64, error) {
	result, ok := asUint64(value)
	if !ok {
		return 0, &FieldError{Path: path, Err: ErrWrongType, Got: describe(value), Want: "integer"}
	}
	return result, nil
}

var (
	minInt64  = big.NewInt(math.MinInt64)
	maxUint64 = new(big.Int).SetUint64(math.MaxUint64)
)

// asUint64 converts a CBOR integer to its 64-bit two's complement bit
// pattern. Older archive writers stored checksums as negative
// integers; the bit pattern is the checksum. Integers outside
// [-2^63, 2^64) have no such pattern and are rejected.
func asUint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case int64:
		return uint64(v), true
	case big.Int:
		return bigToUint64(&v)
	case *big.Int:
		return bigToUint64(v)
	default:
		return 0, false
	}
}

func bigToUint64(v *big.Int) (uint64, bool) {
	switch {
	case v.Sign() >= 0 && v.Cmp(maxUint64) <= 0:
		return v.Uint64(), true
	case v.Sign() < 0 && v.Cmp(minInt64) >= 0:
		return uint64(v.Int64()), true
	default:
		return 0, false
	}
}

// isBigInt reports whether value is a bignum that did not fit in 64
// bits.
func isBigInt(value any) bool {
	switch value.(type) {
	case big.Int, *big.Int:
		return true
	default:
		return false
	}
}

// describe names the CBOR type of a decoded value for error messages.
func describe(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case uint64:
		return "unsigned integer " + strconv.FormatUint(v, 10)
	case int64:
		return "negative integer " + strconv.FormatInt(v, 10)
	case big.Int, *big.Int:
		return "big integer"
	case []byte:
		return fmt.Sprintf("byte string of %d bytes", len(v))
	case string:
		return "text string"
	case []any:
		return fmt.Sprintf("array of %d elements", len(v))
	case codec.Tag:
		return fmt.Sprintf("tag %d", v.Number)
	case bool:
		return "boolean"
	case float32, float64:
		return "float"
	case map[any]any:
		return "map"
	default:
		return fmt.Sprintf("%T", value)
	}
}
