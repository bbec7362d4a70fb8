// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package node

import (
	"fmt"

	"github.com/bureau-foundation/carchive/lib/codec"
)

// Node is one decoded record. The concrete type is always one of
// *Transaction, *Entry, *Block, *Subset, *Epoch, *Rewards, or
// *DataFrame; switch on it or on Kind.
type Node interface {
	Kind() Kind

	// isNode closes the set of implementations to this package.
	isNode()
}

// Decode parses a record payload and dispatches on its leading
// integer to the matching record decoder.
func Decode(payload []byte) (Node, error) {
	value, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	kind, err := peekKind(value)
	if err != nil {
		return nil, err
	}

	return decoders[kind](kind.String(), value)
}

// decoders is indexed by Kind.
var decoders = [...]func(path string, value any) (Node, error){
	KindTransaction: asNode(decodeTransaction),
	KindEntry:       asNode(decodeEntry),
	KindBlock:       asNode(decodeBlock),
	KindSubset:      asNode(decodeSubset),
	KindEpoch:       asNode(decodeEpoch),
	KindRewards:     asNode(decodeRewards),
	KindDataFrame:   asNode(decodeDataFrame),
}

// asNode adapts a typed record decoder so a failed decode yields a
// nil Node rather than a Node holding a nil pointer.
func asNode[P Node](decode func(string, any) (P, error)) func(string, any) (Node, error) {
	return func(path string, value any) (Node, error) {
		record, err := decode(path, value)
		if err != nil {
			return nil, err
		}
		return record, nil
	}
}

// PeekKind returns the kind of a record payload without decoding the
// rest of it.
func PeekKind(payload []byte) (Kind, error) {
	value, err := decodePayload(payload)
	if err != nil {
		return 0, err
	}
	return peekKind(value)
}

func decodePayload(payload []byte) (any, error) {
	value, err := codec.DecodeValue(payload)
	if err != nil {
		return nil, &FieldError{Path: "record", Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	return value, nil
}

func peekKind(value any) (Kind, error) {
	values, ok := value.([]any)
	if !ok {
		return 0, &FieldError{Path: "record", Err: ErrWrongType, Got: describe(value), Want: "array"}
	}
	if len(values) == 0 {
		return 0, &FieldError{Path: "record.kind", Err: ErrUnknownKind, Got: "empty array"}
	}
	raw, ok := asUint64(values[0])
	if !ok {
		return 0, &FieldError{Path: "record.kind", Err: ErrUnknownKind, Got: describe(values[0]), Want: "integer"}
	}
	kind := Kind(raw)
	if !kind.Valid() {
		return 0, &FieldError{Path: "record.kind", Err: ErrUnknownKind, Got: kind.String()}
	}
	return kind, nil
}

// decodeAs is the shared body of the exported per-kind decoders.
func decodeAs[T any](payload []byte, kind Kind, decode func(string, any) (*T, error)) (*T, error) {
	value, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	return decode(kind.String(), value)
}

// DecodeTransaction parses a payload that must be a Transaction.
func DecodeTransaction(payload []byte) (*Transaction, error) {
	return decodeAs(payload, KindTransaction, decodeTransaction)
}

// DecodeEntry parses a payload that must be an Entry.
func DecodeEntry(payload []byte) (*Entry, error) {
	return decodeAs(payload, KindEntry, decodeEntry)
}

// DecodeBlock parses a payload that must be a Block.
func DecodeBlock(payload []byte) (*Block, error) {
	return decodeAs(payload, KindBlock, decodeBlock)
}

// DecodeSubset parses a payload that must be a Subset.
func DecodeSubset(payload []byte) (*Subset, error) {
	return decodeAs(payload, KindSubset, decodeSubset)
}

// DecodeEpoch parses a payload that must be an Epoch.
func DecodeEpoch(payload []byte) (*Epoch, error) {
	return decodeAs(payload, KindEpoch, decodeEpoch)
}

// DecodeRewards parses a payload that must be a Rewards record.
func DecodeRewards(payload []byte) (*Rewards, error) {
	return decodeAs(payload, KindRewards, decodeRewards)
}

// DecodeDataFrame parses a payload that must be a DataFrame.
func DecodeDataFrame(payload []byte) (*DataFrame, error) {
	return decodeAs(payload, KindDataFrame, decodeDataFrame)
}
