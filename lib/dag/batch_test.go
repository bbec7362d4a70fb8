// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dag

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/bureau-foundation/carchive/lib/carreader"
	"github.com/bureau-foundation/carchive/lib/identifier"
	"github.com/bureau-foundation/carchive/lib/node"
	"github.com/bureau-foundation/carchive/lib/testutil"
)

func blockValue(slot uint64, entries ...identifier.Identifier) []any {
	return []any{
		uint64(2),
		slot,
		[]any{},
		testutil.Links(entries...),
		[]any{slot - 1, uint64(0)},
		testutil.Link(identifier.MustParse("bafkqaaa")),
	}
}

func entryValue(transactions ...identifier.Identifier) []any {
	return []any{uint64(1), uint64(12500), make([]byte, 32), testutil.Links(transactions...)}
}

func transactionValue(slot uint64, data []byte) []any {
	return []any{
		uint64(0),
		testutil.DataFrame(nil, nil, nil, data),
		testutil.DataFrame(nil, nil, nil, nil),
		slot,
		uint64(0),
	}
}

func openArchive(t *testing.T, records ...testutil.Record) *carreader.Reader {
	t.Helper()
	archive := testutil.Archive(t, testutil.Header(t), records...)
	return carreader.New(bytes.NewReader(archive), carreader.DefaultLimits())
}

func TestReadUntilBlock(t *testing.T) {
	transaction := testutil.ID("transaction")
	entry := testutil.ID("entry")
	block := testutil.ID("block")
	trailingEntry := testutil.ID("trailing-entry")
	trailingTransaction := testutil.ID("trailing-transaction")

	reader := openArchive(t,
		testutil.Record{ID: transaction, Value: transactionValue(10, []byte("signed bytes"))},
		testutil.Record{ID: entry, Value: entryValue(transaction)},
		testutil.Record{ID: block, Value: blockValue(10, entry)},
		testutil.Record{ID: trailingTransaction, Value: transactionValue(11, []byte("more"))},
		testutil.Record{ID: trailingEntry, Value: entryValue(trailingTransaction)},
	)
	ctx := context.Background()

	first, err := ReadUntilBlock(ctx, reader)
	if err != nil {
		t.Fatalf("first ReadUntilBlock: %v", err)
	}
	var order []identifier.Identifier
	var kinds []node.Kind
	for id, record := range first.Each() {
		order = append(order, id)
		kinds = append(kinds, record.Kind())
	}
	wantOrder := []identifier.Identifier{transaction, entry, block}
	wantKinds := []node.Kind{node.KindTransaction, node.KindEntry, node.KindBlock}
	if len(order) != len(wantOrder) {
		t.Fatalf("first batch has %d records, want %d", len(order), len(wantOrder))
	}
	for i := range wantOrder {
		if order[i] != wantOrder[i] || kinds[i] != wantKinds[i] {
			t.Errorf("record %d = %v (%v), want %v (%v)", i, order[i], kinds[i], wantOrder[i], wantKinds[i])
		}
	}
	blockRecord, ok := first.Block()
	if !ok {
		t.Fatal("first batch does not end with a Block")
	}
	if blockRecord.Slot != 10 {
		t.Errorf("block slot = %d, want 10", blockRecord.Slot)
	}

	// The stream ends without another Block: the rest comes back
	// without error.
	second, err := ReadUntilBlock(ctx, reader)
	if err != nil {
		t.Fatalf("second ReadUntilBlock: %v", err)
	}
	if second.Len() != 2 {
		t.Errorf("second batch has %d records, want 2", second.Len())
	}
	if _, ok := second.Get(trailingEntry); !ok {
		t.Error("second batch is missing the trailing entry")
	}
	if _, ok := second.Block(); ok {
		t.Error("second batch reports a Block")
	}

	third, err := ReadUntilBlock(ctx, reader)
	if err != nil {
		t.Fatalf("third ReadUntilBlock: %v", err)
	}
	if third.Len() != 0 {
		t.Errorf("batch after end has %d records, want 0", third.Len())
	}
}

func TestReadUntilBlockDecodeError(t *testing.T) {
	bad := testutil.ID("bad")
	reader := openArchive(t,
		testutil.Record{ID: bad, Value: []any{uint64(7)}},
	)
	_, err := ReadUntilBlock(context.Background(), reader)
	if !errors.Is(err, node.ErrUnknownKind) {
		t.Fatalf("ReadUntilBlock = %v, want node.ErrUnknownKind", err)
	}
}

func TestReadUntilBlockCancelled(t *testing.T) {
	reader := openArchive(t,
		testutil.Record{ID: testutil.ID("entry"), Value: entryValue()},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadUntilBlock(ctx, reader)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ReadUntilBlock = %v, want context.Canceled", err)
	}
}

func TestPushDuplicateOverwrites(t *testing.T) {
	first := testutil.ID("first")
	second := testutil.ID("second")

	var batch Batch
	batch.Push(first, &node.DataFrame{Data: []byte("old")})
	batch.Push(second, &node.Entry{})
	batch.Push(first, &node.DataFrame{Data: []byte("new")})

	if batch.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", batch.Len())
	}
	record, ok := batch.Get(first)
	if !ok {
		t.Fatal("Get(first) missing")
	}
	if frame := record.(*node.DataFrame); string(frame.Data) != "new" {
		t.Errorf("Get(first) data = %q, want %q", frame.Data, "new")
	}

	var order []identifier.Identifier
	for id := range batch.Each() {
		order = append(order, id)
	}
	if len(order) != 2 || order[0] != first || order[1] != second {
		t.Errorf("order = %v, want [%v %v]", order, first, second)
	}
}

func TestEachStopsEarly(t *testing.T) {
	var batch Batch
	for i := range 5 {
		batch.Push(testutil.ID(string(rune('a'+i))), &node.Entry{})
	}
	visited := 0
	for range batch.Each() {
		visited++
		if visited == 2 {
			break
		}
	}
	if visited != 2 {
		t.Errorf("visited %d records, want 2", visited)
	}
}
