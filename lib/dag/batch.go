// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dag

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/bureau-foundation/carchive/lib/carreader"
	"github.com/bureau-foundation/carchive/lib/identifier"
	"github.com/bureau-foundation/carchive/lib/node"
)

// NodeSource yields raw sections. *carreader.Reader implements it.
type NodeSource interface {
	ReadNode() (*carreader.RawNode, error)
}

// Batch maps identifiers to decoded records, preserving the order in
// which identifiers were first pushed. The zero value is an empty
// batch ready for use.
type Batch struct {
	order   []identifier.Identifier
	records map[identifier.Identifier]node.Node
}

// Push adds a record. A record pushed under an identifier already in
// the batch replaces the earlier record but keeps the earlier
// position in iteration order.
func (b *Batch) Push(id identifier.Identifier, record node.Node) {
	if b.records == nil {
		b.records = make(map[identifier.Identifier]node.Node)
	}
	if _, exists := b.records[id]; !exists {
		b.order = append(b.order, id)
	}
	b.records[id] = record
}

// Get returns the record stored under id.
func (b *Batch) Get(id identifier.Identifier) (node.Node, bool) {
	record, ok := b.records[id]
	return record, ok
}

// Len returns the number of distinct identifiers in the batch.
func (b *Batch) Len() int { return len(b.order) }

// Each iterates over the batch in insertion order.
func (b *Batch) Each() iter.Seq2[identifier.Identifier, node.Node] {
	return func(yield func(identifier.Identifier, node.Node) bool) {
		for _, id := range b.order {
			if !yield(id, b.records[id]) {
				return
			}
		}
	}
}

// Block returns the last record in the batch if it is a Block. A batch
// read by ReadUntilBlock ends with its Block unless the stream ended
// first.
func (b *Batch) Block() (*node.Block, bool) {
	if len(b.order) == 0 {
		return nil, false
	}
	block, ok := b.records[b.order[len(b.order)-1]].(*node.Block)
	return block, ok
}

// ReadUntilBlock reads records from source until it has read a Block,
// which is included, or the source reports a clean end. At a clean
// end the records read so far are returned without error, possibly
// none; the caller sees the end of the stream as an empty batch on
// the next call.
//
// Archives are written children first, so every link a record in the
// batch can reach resolves within the batch or an earlier one.
//
// Cancellation is checked between sections.
func ReadUntilBlock(ctx context.Context, source NodeSource) (*Batch, error) {
	batch := &Batch{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := source.ReadNode()
		if err == io.EOF {
			return batch, nil
		}
		if err != nil {
			return nil, err
		}

		record, err := node.Decode(raw.Payload())
		if err != nil {
			return nil, fmt.Errorf("decoding record %s at offset %d: %w", raw.ID, raw.Offset, err)
		}
		batch.Push(raw.ID, record)

		if record.Kind() == node.KindBlock {
			return batch, nil
		}
	}
}
