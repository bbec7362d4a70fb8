// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package node

// Transaction carries one transaction's serialized bytes and its
// status metadata, each as a (possibly chained) data frame.
//
//	[0, data, metadata, slot, index?]
type Transaction struct {
	Data     DataFrame
	Metadata DataFrame
	Slot     uint64

	// Index is the transaction's position within its block, when the
	// archive writer recorded it.
	Index *uint64
}

const transactionArity = 5

func (*Transaction) Kind() Kind { return KindTransaction }
func (*Transaction) isNode()    {}

func decodeTransaction(path string, value any) (*Transaction, error) {
	fields, err := openTuple(path, value, transactionArity)
	if err != nil {
		return nil, err
	}
	if err := fields.checkKind(KindTransaction); err != nil {
		return nil, err
	}

	var transaction Transaction
	data, err := fields.frame(1, "data")
	if err != nil {
		return nil, err
	}
	transaction.Data = *data

	metadata, err := fields.frame(2, "metadata")
	if err != nil {
		return nil, err
	}
	transaction.Metadata = *metadata

	if transaction.Slot, err = fields.unsigned(3, "slot"); err != nil {
		return nil, err
	}
	if transaction.Index, err = fields.optionalUnsigned(4, "index"); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// frame decodes a nested data frame tuple.
func (t tuple) frame(index int, name string) (*DataFrame, error) {
	value, _, err := t.element(index, name, true)
	if err != nil {
		return nil, err
	}
	return decodeDataFrame(t.fieldPath(name), value)
}
