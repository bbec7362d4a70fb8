// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package node

import (
	"strconv"

	"github.com/bureau-foundation/carchive/lib/identifier"
)

// Block is the root record of one slot. It closes a batch: every
// record a Block reaches through its links precedes it in the archive.
//
//	[2, slot, shredding, entries, meta, rewards]
type Block struct {
	Slot      uint64
	Shredding []Shredding
	Entries   []identifier.Identifier
	Meta      SlotMeta
	Rewards   identifier.Identifier
}

// Shredding records where an entry ended within the block's shreds.
// Either index is -1 when the writer did not know it.
//
//	[entry_end_idx, shred_end_idx]
type Shredding struct {
	EntryEndIndex int64
	ShredEndIndex int64
}

// SlotMeta is the slot metadata embedded in a Block.
//
//	[parent_slot, blocktime, block_height?]
type SlotMeta struct {
	ParentSlot uint64

	// Blocktime is Unix seconds; zero when the cluster had not yet
	// recorded block times.
	Blocktime   int64
	BlockHeight *uint64
}

const (
	blockArity     = 6
	shreddingArity = 2
	slotMetaArity  = 3
)

func (*Block) Kind() Kind { return KindBlock }
func (*Block) isNode()    {}

func decodeBlock(path string, value any) (*Block, error) {
	fields, err := openTuple(path, value, blockArity)
	if err != nil {
		return nil, err
	}
	if err := fields.checkKind(KindBlock); err != nil {
		return nil, err
	}

	var block Block
	if block.Slot, err = fields.unsigned(1, "slot"); err != nil {
		return nil, err
	}

	shreds, err := fields.array(2, "shredding")
	if err != nil {
		return nil, err
	}
	if len(shreds) > 0 {
		block.Shredding = make([]Shredding, len(shreds))
	}
	for i, shred := range shreds {
		decoded, err := decodeShredding(fields.fieldPath("shredding")+"["+strconv.Itoa(i)+"]", shred)
		if err != nil {
			return nil, err
		}
		block.Shredding[i] = decoded
	}

	if block.Entries, err = fields.links(3, "entries"); err != nil {
		return nil, err
	}

	meta, _, err := fields.element(4, "meta", true)
	if err != nil {
		return nil, err
	}
	if block.Meta, err = decodeSlotMeta(fields.fieldPath("meta"), meta); err != nil {
		return nil, err
	}

	if block.Rewards, err = fields.link(5, "rewards"); err != nil {
		return nil, err
	}
	return &block, nil
}

func decodeShredding(path string, value any) (Shredding, error) {
	fields, err := openTuple(path, value, shreddingArity)
	if err != nil {
		return Shredding{}, err
	}
	var shred Shredding
	if shred.EntryEndIndex, err = fields.signed(0, "entry_end_idx"); err != nil {
		return Shredding{}, err
	}
	if shred.ShredEndIndex, err = fields.signed(1, "shred_end_idx"); err != nil {
		return Shredding{}, err
	}
	return shred, nil
}

func decodeSlotMeta(path string, value any) (SlotMeta, error) {
	fields, err := openTuple(path, value, slotMetaArity)
	if err != nil {
		return SlotMeta{}, err
	}
	var meta SlotMeta
	if meta.ParentSlot, err = fields.unsigned(0, "parent_slot"); err != nil {
		return SlotMeta{}, err
	}
	if meta.Blocktime, err = fields.signed(1, "blocktime"); err != nil {
		return SlotMeta{}, err
	}
	if meta.BlockHeight, err = fields.optionalUnsigned(2, "block_height"); err != nil {
		return SlotMeta{}, err
	}
	return meta, nil
}
