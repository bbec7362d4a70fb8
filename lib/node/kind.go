// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package node

import (
	"fmt"
	"strings"
)

// Kind is the leading integer of a record tuple.
type Kind uint64

const (
	KindTransaction Kind = 0
	KindEntry       Kind = 1
	KindBlock       Kind = 2
	KindSubset      Kind = 3
	KindEpoch       Kind = 4
	KindRewards     Kind = 5
	KindDataFrame   Kind = 6
)

// Kinds lists every record kind in discriminant order.
var Kinds = []Kind{
	KindTransaction,
	KindEntry,
	KindBlock,
	KindSubset,
	KindEpoch,
	KindRewards,
	KindDataFrame,
}

var kindNames = [...]string{
	KindTransaction: "Transaction",
	KindEntry:       "Entry",
	KindBlock:       "Block",
	KindSubset:      "Subset",
	KindEpoch:       "Epoch",
	KindRewards:     "Rewards",
	KindDataFrame:   "DataFrame",
}

// Valid reports whether k is one of the seven known kinds.
func (k Kind) Valid() bool { return k <= KindDataFrame }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint64(k))
	}
	return kindNames[k]
}

// ParseKind returns the kind with the given name. Matching is case
// insensitive, so "dataframe" and "DataFrame" both work.
func ParseKind(name string) (Kind, error) {
	for kind, kindName := range kindNames {
		if strings.EqualFold(name, kindName) {
			return Kind(kind), nil
		}
	}
	return 0, fmt.Errorf("unknown record kind %q", name)
}
