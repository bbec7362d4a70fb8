// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package node

import "github.com/bureau-foundation/carchive/lib/identifier"

// HashSize is the length of an Entry's proof-of-history hash.
const HashSize = 32

// Entry is one proof-of-history entry.
//
//	[1, num_hashes, hash, transactions]
type Entry struct {
	NumHashes    uint64
	Hash         []byte
	Transactions []identifier.Identifier
}

// Subset groups a contiguous slot range of blocks.
//
//	[3, first, last, blocks]
type Subset struct {
	First  uint64
	Last   uint64
	Blocks []identifier.Identifier
}

// Epoch is the root of an epoch archive.
//
//	[4, epoch, subsets]
type Epoch struct {
	Epoch   uint64
	Subsets []identifier.Identifier
}

// Rewards holds a block's serialized rewards as a data frame.
//
//	[5, slot, data]
type Rewards struct {
	Slot uint64
	Data DataFrame
}

const (
	entryArity   = 4
	subsetArity  = 4
	epochArity   = 3
	rewardsArity = 3
)

func (*Entry) Kind() Kind   { return KindEntry }
func (*Entry) isNode()      {}
func (*Subset) Kind() Kind  { return KindSubset }
func (*Subset) isNode()     {}
func (*Epoch) Kind() Kind   { return KindEpoch }
func (*Epoch) isNode()      {}
func (*Rewards) Kind() Kind { return KindRewards }
func (*Rewards) isNode()    {}

// IsComplete reports whether the rewards payload fits in its own data
// frame, so no reassembly is needed.
func (r *Rewards) IsComplete() bool { return !r.Data.HasContinuation() }

func decodeEntry(path string, value any) (*Entry, error) {
	fields, err := openTuple(path, value, entryArity)
	if err != nil {
		return nil, err
	}
	if err := fields.checkKind(KindEntry); err != nil {
		return nil, err
	}

	var entry Entry
	if entry.NumHashes, err = fields.unsigned(1, "num_hashes"); err != nil {
		return nil, err
	}
	if entry.Hash, err = fields.fixedBytes(2, "hash", HashSize); err != nil {
		return nil, err
	}
	if entry.Transactions, err = fields.links(3, "transactions"); err != nil {
		return nil, err
	}
	return &entry, nil
}

func decodeSubset(path string, value any) (*Subset, error) {
	fields, err := openTuple(path, value, subsetArity)
	if err != nil {
		return nil, err
	}
	if err := fields.checkKind(KindSubset); err != nil {
		return nil, err
	}

	var subset Subset
	if subset.First, err = fields.unsigned(1, "first"); err != nil {
		return nil, err
	}
	if subset.Last, err = fields.unsigned(2, "last"); err != nil {
		return nil, err
	}
	if subset.Blocks, err = fields.links(3, "blocks"); err != nil {
		return nil, err
	}
	return &subset, nil
}

func decodeEpoch(path string, value any) (*Epoch, error) {
	fields, err := openTuple(path, value, epochArity)
	if err != nil {
		return nil, err
	}
	if err := fields.checkKind(KindEpoch); err != nil {
		return nil, err
	}

	var epoch Epoch
	if epoch.Epoch, err = fields.unsigned(1, "epoch"); err != nil {
		return nil, err
	}
	if epoch.Subsets, err = fields.links(2, "subsets"); err != nil {
		return nil, err
	}
	return &epoch, nil
}

func decodeRewards(path string, value any) (*Rewards, error) {
	fields, err := openTuple(path, value, rewardsArity)
	if err != nil {
		return nil, err
	}
	if err := fields.checkKind(KindRewards); err != nil {
		return nil, err
	}

	var rewards Rewards
	if rewards.Slot, err = fields.unsigned(1, "slot"); err != nil {
		return nil, err
	}
	data, err := fields.frame(2, "data")
	if err != nil {
		return nil, err
	}
	rewards.Data = *data
	return &rewards, nil
}
